package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tendorai/internal/domain"
)

type fakeVendors struct {
	vendors       map[string]domain.Vendor
	practiceCount int
	serviceCount  int
	countCalls    int
	countErr      error
	eligible      []domain.Vendor
	unsubscribed  map[string]bool
}

func newFakeVendors(vendors ...domain.Vendor) *fakeVendors {
	f := &fakeVendors{vendors: map[string]domain.Vendor{}, unsubscribed: map[string]bool{}}
	for _, v := range vendors {
		f.vendors[v.ID] = v
	}
	return f
}

func (f *fakeVendors) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, fmt.Errorf("%w: vendor %s", domain.ErrNotFound, id)
	}
	return &v, nil
}

func (f *fakeVendors) CountByPracticeArea(context.Context, string, string, string) (int, error) {
	f.countCalls++
	return f.practiceCount, f.countErr
}

func (f *fakeVendors) CountByService(context.Context, string, string) (int, error) {
	f.countCalls++
	return f.serviceCount, f.countErr
}

func (f *fakeVendors) ListDigestEligible(context.Context) ([]domain.Vendor, error) {
	return f.eligible, nil
}

func (f *fakeVendors) SetUnsubscribed(_ context.Context, vendorID string, unsubscribed bool) error {
	f.unsubscribed[vendorID] = unsubscribed
	return nil
}

type fakeProducts struct {
	products []domain.VendorProduct
}

func (f *fakeProducts) ListByVendor(context.Context, string) ([]domain.VendorProduct, error) {
	return f.products, nil
}

type fakeAudits struct {
	audits    []domain.AeoAudit
	createErr error
}

func (f *fakeAudits) Create(_ context.Context, audit domain.AeoAudit) (*domain.AeoAudit, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	audit.ID = strconv.Itoa(len(f.audits) + 1)
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}
	f.audits = append(f.audits, audit)
	return &audit, nil
}

func (f *fakeAudits) LatestByVendor(_ context.Context, vendorID string) (*domain.AeoAudit, error) {
	var latest *domain.AeoAudit
	for i := range f.audits {
		a := &f.audits[i]
		if a.VendorID != vendorID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no audits", domain.ErrNotFound)
	}
	out := *latest
	return &out, nil
}

func (f *fakeAudits) HistoryByVendor(_ context.Context, vendorID string, limit int) ([]domain.AeoAudit, error) {
	var out []domain.AeoAudit
	for i := len(f.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if f.audits[i].VendorID == vendorID {
			out = append(out, f.audits[i])
		}
	}
	return out, nil
}

type fakeMentions struct {
	counts       map[string]int
	latest       []domain.AIMentionScan
	weeks        []domain.WeeklyMentions
	rank         domain.CategoryRank
	competitorsN int
}

func mentionKey(f domain.MentionCountFilter) string {
	m := "any"
	if f.Mentioned != nil {
		m = strconv.FormatBool(*f.Mentioned)
	}
	return m + "/" + f.From.Format("2006-01-02") + "/" + f.To.Format("2006-01-02")
}

func (f *fakeMentions) Count(_ context.Context, _ string, filter domain.MentionCountFilter) (int, error) {
	return f.counts[mentionKey(filter)], nil
}

func (f *fakeMentions) ListLatest(context.Context, string, bool, int) ([]domain.AIMentionScan, error) {
	return f.latest, nil
}

func (f *fakeMentions) AggregateByWeek(context.Context, string, time.Time) ([]domain.WeeklyMentions, error) {
	return f.weeks, nil
}

func (f *fakeMentions) RankInCategory(context.Context, string, string, string, time.Time) (domain.CategoryRank, error) {
	return f.rank, nil
}

func (f *fakeMentions) UniqueCompetitorCount(context.Context, string, time.Time) (int, error) {
	return f.competitorsN, nil
}

type fakeReports struct {
	created []domain.AeoReport
}

func (f *fakeReports) Create(_ context.Context, report domain.AeoReport) (*domain.AeoReport, error) {
	report.ID = strconv.Itoa(len(f.created) + 1)
	report.CreatedAt = time.Now()
	f.created = append(f.created, report)
	return &report, nil
}

type fakeFetcher struct {
	html     string
	finalURL string
	err      error
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	final := f.finalURL
	if final == "" {
		final = rawURL
	}
	return f.html, final, nil
}

type fakeSearch struct {
	text  string
	err   error
	calls int
}

func (f *fakeSearch) Name() string { return "fake-search" }

func (f *fakeSearch) Research(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakePlain struct {
	text  string
	err   error
	calls int
}

func (f *fakePlain) Name() string { return "fake-plain" }

func (f *fakePlain) Complete(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeCache struct {
	values map[string]int
	puts   int
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string]int{}} }

func (f *fakeCache) Get(_ context.Context, key string) (int, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCache) Put(_ context.Context, key string, value int, _ time.Duration) error {
	f.puts++
	f.values[key] = value
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(data DigestEmailData) (string, error) {
	return "<html>" + data.VendorName + "</html>", nil
}

type fakeSigner struct{}

func (fakeSigner) Sign(vendorID string) (string, error) { return "tok-" + vendorID, nil }

type fakeDigests struct {
	sent    map[string]bool
	records []string
}

func newFakeDigests() *fakeDigests { return &fakeDigests{sent: map[string]bool{}} }

func (f *fakeDigests) AlreadySent(_ context.Context, vendorID, week string) (bool, error) {
	return f.sent[vendorID+"/"+week], nil
}

func (f *fakeDigests) Record(_ context.Context, vendorID, week, subject string, succeeded bool, _ string) error {
	f.records = append(f.records, fmt.Sprintf("%s/%s/%t", vendorID, week, succeeded))
	if succeeded {
		f.sent[vendorID+"/"+week] = true
	}
	return nil
}
