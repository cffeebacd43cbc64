package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tendorai/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var digestNow = time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC) // a Monday

func digestVendor(id, email string) domain.Vendor {
	return domain.Vendor{
		ID:      id,
		Company: "Acme " + id,
		Email:   email,
		Tier:    domain.TierVisible,
		Status:  domain.VendorActive,
	}
}

type digestHarness struct {
	service *DigestService
	vendors *fakeVendors
	mailer  *fakeMailer
	digests *fakeDigests
}

func newDigestHarness(mentions *fakeMentions, eligible ...domain.Vendor) *digestHarness {
	vendors := newFakeVendors(eligible...)
	vendors.eligible = eligible
	mailer := &fakeMailer{}
	digests := newFakeDigests()

	visibility := NewVisibilityService(vendors, &fakeProducts{}, mentions)
	visibility.now = func() time.Time { return digestNow }

	service := NewDigestService(
		vendors, mentions, visibility, digests,
		fakeRenderer{}, mailer, fakeSigner{},
		"https://tendorai.com", "https://api.tendorai.com",
		zap.NewNop(),
	)
	service.now = func() time.Time { return digestNow }
	service.sleep = func(context.Context, time.Duration) error { return nil }

	return &digestHarness{service: service, vendors: vendors, mailer: mailer, digests: digests}
}

func quietMentions() *fakeMentions {
	return &fakeMentions{counts: map[string]int{}}
}

func TestDigestSendsToEligibleVendors(t *testing.T) {
	h := newDigestHarness(quietMentions(),
		digestVendor("v1", "one@acme.example"),
		digestVendor("v2", "two@acme.example"),
	)

	result, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Eligible)
	require.Equal(t, 2, result.Sent)
	require.Zero(t, result.Failed)
	require.Len(t, h.mailer.sent, 2)
	require.Equal(t, "one@acme.example", h.mailer.sent[0].To)
}

func TestDigestIsIdempotentPerWeek(t *testing.T) {
	h := newDigestHarness(quietMentions(), digestVendor("v1", "one@acme.example"))

	first, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Sent)

	second, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, second.Sent)
	require.Equal(t, 1, second.Skipped)
	require.Len(t, h.mailer.sent, 1)
}

func TestDigestSubjectCompetitorHook(t *testing.T) {
	mentions := quietMentions()
	mentions.competitorsN = 3
	h := newDigestHarness(mentions, digestVendor("v1", "one@acme.example"))

	_, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, h.mailer.sent, 1)
	require.Equal(t, "3 competitors appeared in AI search this week. You didn't.", h.mailer.sent[0].Subject)
}

func TestDigestSubjectWithMentions(t *testing.T) {
	yes := true
	mentions := quietMentions()
	mentions.counts[mentionKey(domain.MentionCountFilter{Mentioned: &yes, From: digestNow.AddDate(0, 0, -7)})] = 4
	h := newDigestHarness(mentions, digestVendor("v1", "one@acme.example"))

	_, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AI search update: 4 mentions this week", h.mailer.sent[0].Subject)
}

func TestDigestSubjectQuietWeek(t *testing.T) {
	h := newDigestHarness(quietMentions(), digestVendor("v1", "one@acme.example"))

	_, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h.mailer.sent[0].Subject, "Your AI Visibility Report"), h.mailer.sent[0].Subject)
}

func TestDigestFailureIsolation(t *testing.T) {
	h := newDigestHarness(quietMentions(),
		digestVendor("v1", "one@acme.example"),
		digestVendor("v2", "two@acme.example"),
	)
	h.mailer.err = errors.New("smtp refused")

	result, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Failed)
	require.Zero(t, result.Sent)

	// A failed send is recorded but does not claim the week, so the next run
	// retries it.
	h.mailer.err = nil
	retry, err := h.service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, retry.Sent)
}

func TestDigestUnsubscribeLinkCarriesToken(t *testing.T) {
	mentions := quietMentions()
	vendors := newFakeVendors(digestVendor("v1", "one@acme.example"))
	vendors.eligible = []domain.Vendor{digestVendor("v1", "one@acme.example")}

	visibility := NewVisibilityService(vendors, &fakeProducts{}, mentions)
	var captured DigestEmailData
	renderer := renderCapture{captured: &captured}

	service := NewDigestService(
		vendors, mentions, visibility, newFakeDigests(),
		renderer, &fakeMailer{}, fakeSigner{},
		"https://tendorai.com", "https://api.tendorai.com",
		zap.NewNop(),
	)
	service.sleep = func(context.Context, time.Duration) error { return nil }

	_, err := service.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://api.tendorai.com/api/public/unsubscribe?token=tok-v1", captured.UnsubscribeURL)
	require.Equal(t, "https://tendorai.com/dashboard/visibility", captured.DashboardURL)
}

type renderCapture struct {
	captured *DigestEmailData
}

func (r renderCapture) Render(data DigestEmailData) (string, error) {
	*r.captured = data
	return "<html></html>", nil
}
