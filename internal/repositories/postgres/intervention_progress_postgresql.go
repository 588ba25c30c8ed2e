package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/intervention-service/internal/models"
	"github.com/SAP-F-2025/intervention-service/internal/repositories"
	"gorm.io/gorm"
)

// Percentages round half up: floor((200*num + den) / (2*den)) in integer
// arithmetic, which matches models.RoundPercent on both drivers.
const (
	percentCompleteSQL = "CASE WHEN total_activities > 0 " +
		"THEN (completed_activities * 200 + total_activities) / (total_activities * 2) ELSE 0 END"
	percentCorrectSQL = "CASE WHEN correct_answers + incorrect_answers > 0 " +
		"THEN (correct_answers * 200 + correct_answers + incorrect_answers) / ((correct_answers + incorrect_answers) * 2) ELSE 0 END"
	planThresholdSQL = "(SELECT intervention_plans.pass_threshold FROM intervention_plans " +
		"WHERE intervention_plans.id = intervention_progress.intervention_plan_id)"
)

type InterventionProgressPostgreSQL struct {
	db *gorm.DB
}

func NewInterventionProgressPostgreSQL(db *gorm.DB) repositories.InterventionProgressRepository {
	return &InterventionProgressPostgreSQL{db: db}
}

func (i *InterventionProgressPostgreSQL) Create(ctx context.Context, progress *models.InterventionProgress) error {
	return i.db.WithContext(ctx).Create(progress).Error
}

func (i *InterventionProgressPostgreSQL) GetByPlanID(ctx context.Context, planID uint) (*models.InterventionProgress, error) {
	var progress models.InterventionProgress
	if err := i.db.WithContext(ctx).Where("intervention_plan_id = ?", planID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (i *InterventionProgressPostgreSQL) DeleteByPlanID(ctx context.Context, planID uint) error {
	return i.db.WithContext(ctx).
		Where("intervention_plan_id = ?", planID).
		Delete(&models.InterventionProgress{}).Error
}

func (i *InterventionProgressPostgreSQL) IncrementCounters(ctx context.Context, planID uint, correct bool, at time.Time) error {
	answerColumn := "incorrect_answers"
	if correct {
		answerColumn = "correct_answers"
	}

	return requireAffected(i.db.WithContext(ctx).
		Model(&models.InterventionProgress{}).
		Where("intervention_plan_id = ?", planID).
		Updates(map[string]interface{}{
			"completed_activities": gorm.Expr("completed_activities + ?", 1),
			answerColumn:           gorm.Expr(answerColumn+" + ?", 1),
			"last_activity":        at,
		}))
}

func (i *InterventionProgressPostgreSQL) SetTotalActivities(ctx context.Context, planID uint, total int) error {
	return requireAffected(i.db.WithContext(ctx).
		Model(&models.InterventionProgress{}).
		Where("intervention_plan_id = ?", planID).
		Update("total_activities", total))
}

// Recalculate reads the counters inside the UPDATE itself, so a concurrent
// IncrementCounters is either fully reflected or followed by its own
// Recalculate.
func (i *InterventionProgressPostgreSQL) Recalculate(ctx context.Context, planID uint) error {
	return requireAffected(i.db.WithContext(ctx).
		Model(&models.InterventionProgress{}).
		Where("intervention_plan_id = ?", planID).
		Updates(map[string]interface{}{
			"percent_complete": gorm.Expr(percentCompleteSQL),
			"percent_correct":  gorm.Expr(percentCorrectSQL),
			"passed_threshold": gorm.Expr("(" + percentCorrectSQL + ") >= " + planThresholdSQL),
			"updated_at":       time.Now(),
		}))
}
