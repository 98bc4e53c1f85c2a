package dayview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/daycare-api/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, oslo)

	assert.Equal(t, "1 t 30 min", FormatDuration(start, start.Add(90*time.Minute)))
	assert.Equal(t, "45 min", FormatDuration(start, start.Add(45*time.Minute)))
	assert.Equal(t, "1 t 0 min", FormatDuration(start, start.Add(time.Hour)))
	assert.Equal(t, "2 min", FormatDuration(start, start.Add(90*time.Second)))
	assert.Equal(t, "", FormatDuration(start, start))
	assert.Equal(t, "", FormatDuration(start, start.Add(-time.Minute)))
}

func TestSleepTextForLoggedDay(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, oslo)
	child := models.Child{
		SleepDateID: strPtr("2024-05-01"),
		SleepStart:  timePtr(time.Date(2024, 5, 1, 9, 0, 0, 0, oslo)),
		SleepEnd:    timePtr(time.Date(2024, 5, 1, 10, 30, 0, 0, oslo)),
	}

	assert.Equal(t, "09:00–10:30 (1 t 30 min)", SleepText(child, day, oslo))
	assert.Equal(t, "", SleepText(child, day.AddDate(0, 0, 1), oslo))
}

func TestSleepTextStartedOnly(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, oslo)
	child := models.Child{
		SleepDateID: strPtr("2024-05-01"),
		SleepStart:  timePtr(time.Date(2024, 5, 1, 11, 5, 0, 0, oslo)),
	}
	assert.Equal(t, "Startet 11:05", SleepText(child, day, oslo))

	child.SleepEnd = timePtr(time.Date(2024, 5, 1, 11, 0, 0, 0, oslo))
	assert.Equal(t, "Startet 11:05", SleepText(child, day, oslo))
}

func TestSleepTextWithoutLog(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, oslo)
	assert.Equal(t, "", SleepText(models.Child{}, day, oslo))
	assert.Equal(t, "", SleepText(models.Child{SleepDateID: strPtr("2024-05-01")}, day, oslo))
}

func TestPlannedSleepText(t *testing.T) {
	assert.Equal(t, "Ikke angitt", PlannedSleepText(models.Child{}))
	assert.Equal(t, "Skal ikke sove", PlannedSleepText(models.Child{SleepPlanned: boolPtr(false), SleepPlannedMinutes: intPtr(30)}))
	assert.Equal(t, "Skal sove ca 60 min", PlannedSleepText(models.Child{SleepPlanned: boolPtr(true), SleepPlannedMinutes: intPtr(60)}))
	assert.Equal(t, "Skal sove", PlannedSleepText(models.Child{SleepPlanned: boolPtr(true)}))
	assert.Equal(t, "Skal sove", PlannedSleepText(models.Child{SleepPlanned: boolPtr(true), SleepPlannedMinutes: intPtr(0)}))
}
