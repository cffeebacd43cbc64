package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tendorai/internal/domain"

	"go.uber.org/zap"
)

// sendThrottle spaces digest sends so the SMTP relay is never burst-hit.
const sendThrottle = time.Second

// DigestEmailData is everything the HTML template needs for one vendor.
type DigestEmailData struct {
	VendorName         string
	TierName           string
	WeekOf             string
	Score              int
	ScoreLabel         string
	MentionsThisWeek   int
	CompetitorMentions int
	Recommendations    []domain.ScoreRecommendation
	DashboardURL       string
	UpgradeURL         string
	UnsubscribeURL     string
}

// DigestRenderer turns the per-vendor data into the final HTML body.
type DigestRenderer interface {
	Render(data DigestEmailData) (string, error)
}

// DigestResult summarises one batch run.
type DigestResult struct {
	Eligible int
	Sent     int
	Skipped  int
	Failed   int
}

// DigestService sends the weekly visibility email to every eligible vendor.
// Sends are idempotent per vendor per ISO week, and one vendor's failure
// never aborts the batch.
type DigestService struct {
	Vendors    VendorRepository
	Mentions   MentionRepository
	Visibility *VisibilityService
	Digests    DigestRepository
	Renderer   DigestRenderer
	Mailer     MailSender
	Signer     UnsubscribeTokenSigner
	Logger     *zap.Logger

	FrontendBaseURL string
	BackendBaseURL  string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDigestService(
	vendors VendorRepository,
	mentions MentionRepository,
	visibility *VisibilityService,
	digests DigestRepository,
	renderer DigestRenderer,
	mailer MailSender,
	signer UnsubscribeTokenSigner,
	frontendBaseURL, backendBaseURL string,
	logger *zap.Logger,
) *DigestService {
	return &DigestService{
		Vendors:         vendors,
		Mentions:        mentions,
		Visibility:      visibility,
		Digests:         digests,
		Renderer:        renderer,
		Mailer:          mailer,
		Signer:          signer,
		FrontendBaseURL: frontendBaseURL,
		BackendBaseURL:  backendBaseURL,
		Logger:          logger,
		now:             time.Now,
		sleep:           sleepCtx,
	}
}

// Run executes one digest batch for the current ISO week.
func (d *DigestService) Run(ctx context.Context) (*DigestResult, error) {
	vendors, err := d.Vendors.ListDigestEligible(ctx)
	if err != nil {
		return nil, err
	}
	week := domain.ISOWeek(d.now())
	result := &DigestResult{Eligible: len(vendors)}

	for i, vendor := range vendors {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("%w: digest batch interrupted", domain.ErrCancelled)
		}
		if i > 0 {
			if err := d.sleep(ctx, sendThrottle); err != nil {
				return result, err
			}
		}

		sent, err := d.sendOne(ctx, vendor, week)
		switch {
		case err != nil:
			result.Failed++
			d.Logger.Error("digest send failed",
				zap.String("vendorId", vendor.ID),
				zap.String("week", week),
				zap.Error(err),
			)
		case sent:
			result.Sent++
		default:
			result.Skipped++
		}
	}

	d.Logger.Info("digest batch complete",
		zap.String("week", week),
		zap.Int("eligible", result.Eligible),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (d *DigestService) sendOne(ctx context.Context, vendor domain.Vendor, week string) (bool, error) {
	sent, err := d.Digests.AlreadySent(ctx, vendor.ID, week)
	if err != nil {
		return false, err
	}
	if sent {
		return false, nil
	}

	data, subject, err := d.compose(ctx, vendor)
	if err != nil {
		return false, err
	}
	body, err := d.Renderer.Render(data)
	if err != nil {
		return false, err
	}

	if err := d.Mailer.Send(ctx, vendor.Email, subject, body); err != nil {
		_ = d.Digests.Record(ctx, vendor.ID, week, subject, false, err.Error())
		return false, err
	}
	if err := d.Digests.Record(ctx, vendor.ID, week, subject, true, ""); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DigestService) compose(ctx context.Context, vendor domain.Vendor) (DigestEmailData, string, error) {
	snapshot, err := d.Visibility.Snapshot(ctx, vendor.ID)
	if err != nil {
		return DigestEmailData{}, "", err
	}

	now := d.now()
	mentioned := true
	thisWeek, err := d.Mentions.Count(ctx, vendor.ID, domain.MentionCountFilter{
		Mentioned: &mentioned,
		From:      now.AddDate(0, 0, -7),
	})
	if err != nil {
		return DigestEmailData{}, "", err
	}
	competitors, err := d.Mentions.UniqueCompetitorCount(ctx, vendor.ID, now.AddDate(0, 0, -7))
	if err != nil {
		return DigestEmailData{}, "", err
	}

	token, err := d.Signer.Sign(vendor.ID)
	if err != nil {
		return DigestEmailData{}, "", err
	}

	name := vendor.Company
	if name == "" {
		name = vendor.Name
	}
	recs := snapshot.Recommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	data := DigestEmailData{
		VendorName:         name,
		TierName:           vendor.Tier.DisplayName(),
		WeekOf:             now.Format("2 January 2006"),
		Score:              snapshot.Score,
		ScoreLabel:         snapshot.Label,
		MentionsThisWeek:   thisWeek,
		CompetitorMentions: competitors,
		Recommendations:    recs,
		DashboardURL:       d.FrontendBaseURL + "/dashboard/visibility",
		UpgradeURL:         d.FrontendBaseURL + "/pricing",
		UnsubscribeURL:     d.BackendBaseURL + "/api/public/unsubscribe?token=" + url.QueryEscape(token),
	}

	return data, digestSubject(data), nil
}

// digestSubject picks the subject line: the competitor hook wins when the
// vendor went unmentioned while rivals did not.
func digestSubject(data DigestEmailData) string {
	switch {
	case data.MentionsThisWeek == 0 && data.CompetitorMentions > 0:
		return fmt.Sprintf("%d competitors appeared in AI search this week. You didn't.", data.CompetitorMentions)
	case data.MentionsThisWeek > 0:
		return fmt.Sprintf("AI search update: %d mentions this week", data.MentionsThisWeek)
	default:
		return "Your AI Visibility Report — Week of " + data.WeekOf
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
	case <-t.C:
		return nil
	}
}
