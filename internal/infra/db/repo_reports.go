package db

import (
	"context"
	"encoding/json"
	"time"

	"tendorai/internal/domain"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report domain.AeoReport) (*domain.AeoReport, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if report.ID == "" {
		report.ID = newID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	model := AeoReportModel{
		ID:                    report.ID,
		CompanyName:           report.CompanyName,
		Category:              report.Category,
		CustomIndustry:        report.CustomIndustry,
		City:                  report.City,
		Email:                 report.Email,
		ReportType:            report.ReportType,
		AIMentioned:           report.AIMentioned,
		AIPosition:            report.AIPosition,
		AIRecommendationsJSON: marshalJSON(report.AIRecommendations),
		CompetitorsOnTendorAI: report.CompetitorsOnTendorAI,
		Score:                 report.Score,
		BreakdownJSON:         marshalJSON(report.ScoreBreakdown),
		SearchedCompanyJSON:   marshalJSON(report.SearchedCompany),
		CompetitorsJSON:       marshalJSON(report.Competitors),
		GapsJSON:              marshalJSON(report.Gaps),
		CreatedAt:             report.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.AeoReport, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AeoReportModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	report := reportFromModel(model)
	return &report, nil
}

func reportFromModel(m AeoReportModel) domain.AeoReport {
	report := domain.AeoReport{
		ID:                    m.ID,
		CompanyName:           m.CompanyName,
		Category:              m.Category,
		CustomIndustry:        m.CustomIndustry,
		City:                  m.City,
		Email:                 m.Email,
		ReportType:            m.ReportType,
		AIMentioned:           m.AIMentioned,
		AIPosition:            m.AIPosition,
		AIRecommendations:     unmarshalStrings(m.AIRecommendationsJSON),
		CompetitorsOnTendorAI: m.CompetitorsOnTendorAI,
		Score:                 m.Score,
		CreatedAt:             m.CreatedAt,
	}
	_ = json.Unmarshal(m.BreakdownJSON, &report.ScoreBreakdown)
	_ = json.Unmarshal(m.SearchedCompanyJSON, &report.SearchedCompany)
	if len(m.CompetitorsJSON) > 0 {
		_ = json.Unmarshal(m.CompetitorsJSON, &report.Competitors)
	}
	if len(m.GapsJSON) > 0 {
		_ = json.Unmarshal(m.GapsJSON, &report.Gaps)
	}
	return report
}
