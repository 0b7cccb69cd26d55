// ABOUTME: Export and import of tracker data across any Repository.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/cortitrack/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current export format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for tracker data.
type ExportData struct {
	Version        string                  `json:"version" yaml:"version"`
	ExportedAt     time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool           string                  `json:"tool" yaml:"tool"`
	Users          []*models.User          `json:"users" yaml:"users"`
	Readings       []*models.Reading       `json:"readings" yaml:"readings"`
	MedicalHistory []*models.MedicalRecord `json:"medical_history" yaml:"medical_history"`
	GaugeSettings  *models.GaugeSettings   `json:"gauge_settings,omitempty" yaml:"gauge_settings,omitempty"`
	UserSettings   []*models.UserSettings  `json:"user_settings" yaml:"user_settings"`
}

// TransferSummary holds counts of records written by an import or migration.
type TransferSummary struct {
	Users          int
	Readings       int
	MedicalRecords int
	UserSettings   int
	GaugeSettings  bool
	Skipped        int
}

// GetAllData retrieves all data from repo for export.
func GetAllData(repo Repository) (*ExportData, error) {
	users, err := repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	readings, err := repo.ListReadings(nil)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	records, err := repo.ListMedicalRecords(nil)
	if err != nil {
		return nil, fmt.Errorf("list medical history: %w", err)
	}
	gauges, err := repo.GetGaugeSettings()
	if err != nil {
		return nil, fmt.Errorf("get gauge settings: %w", err)
	}
	settings, err := repo.ListUserSettings()
	if err != nil {
		return nil, fmt.Errorf("list user settings: %w", err)
	}

	return &ExportData{
		Version:        ExportVersion,
		ExportedAt:     time.Now(),
		Tool:           "cortitrack",
		Users:          users,
		Readings:       readings,
		MedicalHistory: records,
		GaugeSettings:  gauges,
		UserSettings:   settings,
	}, nil
}

// ImportData writes an export into repo. Readings are upserted by owner and
// day; users and medical records that already exist are skipped.
func ImportData(repo Repository, data *ExportData) (*TransferSummary, error) {
	summary := &TransferSummary{}

	for _, u := range data.Users {
		if err := repo.CreateUser(u); err != nil {
			if errors.Is(err, ErrDuplicate) {
				summary.Skipped++
				continue
			}
			return nil, fmt.Errorf("import user %s: %w", u.ID, err)
		}
		summary.Users++
	}

	for _, r := range data.Readings {
		if _, err := repo.UpsertReading(r); err != nil {
			return nil, fmt.Errorf("import reading %s: %w", r.ID, err)
		}
		summary.Readings++
	}

	for _, rec := range data.MedicalHistory {
		if err := repo.CreateMedicalRecord(rec); err != nil {
			if errors.Is(err, ErrDuplicate) {
				summary.Skipped++
				continue
			}
			return nil, fmt.Errorf("import medical record %s: %w", rec.ID, err)
		}
		summary.MedicalRecords++
	}

	if data.GaugeSettings != nil {
		if err := data.GaugeSettings.Validate(); err != nil {
			return nil, fmt.Errorf("import gauge settings: %w", err)
		}
		if err := repo.SaveGaugeSettings(data.GaugeSettings); err != nil {
			return nil, fmt.Errorf("import gauge settings: %w", err)
		}
		summary.GaugeSettings = true
	}

	for _, s := range data.UserSettings {
		if err := repo.SaveUserSettings(s); err != nil {
			return nil, fmt.Errorf("import settings for %s: %w", s.UserID, err)
		}
		summary.UserSettings++
	}

	return summary, nil
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, raw []byte) (*TransferSummary, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(repo, &data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type yamlReading struct {
	Date           string `yaml:"date"`
	StressLevel    int    `yaml:"stress_level"`
	HeartRate      int    `yaml:"heart_rate"`
	BloodOxygen    int    `yaml:"blood_oxygen_lv"`
	SleepQuality   int    `yaml:"sleep_quality"`
	CapturedAt     string `yaml:"timestamp"`
	MedicalContext string `yaml:"medical_context,omitempty"`
}

type yamlMedicalRecord struct {
	Condition     string `yaml:"condition"`
	DiagnosisDate string `yaml:"diagnosis_date"`
	Notes         string `yaml:"notes,omitempty"`
}

// ExportYAML exports all data as YAML with readings grouped by owner.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := GetAllData(repo)
	if err != nil {
		return nil, err
	}

	out := struct {
		Version        string                         `yaml:"version"`
		ExportedAt     string                         `yaml:"exported_at"`
		Tool           string                         `yaml:"tool"`
		Users          []*models.User                 `yaml:"users"`
		Readings       map[string][]yamlReading       `yaml:"readings"`
		MedicalHistory map[string][]yamlMedicalRecord `yaml:"medical_history"`
		GaugeSettings  *models.GaugeSettings          `yaml:"gauge_settings"`
	}{
		Version:        data.Version,
		ExportedAt:     data.ExportedAt.Format(time.RFC3339),
		Tool:           data.Tool,
		Users:          data.Users,
		Readings:       make(map[string][]yamlReading),
		MedicalHistory: make(map[string][]yamlMedicalRecord),
		GaugeSettings:  data.GaugeSettings,
	}

	for _, r := range data.Readings {
		yr := yamlReading{
			Date:         r.CalendarDay,
			StressLevel:  r.StressLevel,
			HeartRate:    r.HeartRate,
			BloodOxygen:  r.BloodOxygen,
			SleepQuality: r.SleepQuality,
			CapturedAt:   r.CapturedAt.Format(time.RFC3339),
		}
		if r.MedicalContext != nil {
			yr.MedicalContext = *r.MedicalContext
		}
		out.Readings[r.OwnerID] = append(out.Readings[r.OwnerID], yr)
	}

	for _, rec := range data.MedicalHistory {
		out.MedicalHistory[rec.OwnerID] = append(out.MedicalHistory[rec.OwnerID], yamlMedicalRecord{
			Condition:     rec.Condition,
			DiagnosisDate: rec.DiagnosisDate,
			Notes:         rec.Notes,
		})
	}

	return yaml.Marshal(out)
}

// ExportMarkdown renders readings as one table per owner. When ownerID is
// set only that owner's readings are included; since drops older readings.
func ExportMarkdown(repo Repository, ownerID *string, since *time.Time) (string, error) {
	readings, err := repo.ListReadings(ownerID)
	if err != nil {
		return "", err
	}

	names := make(map[string]string)
	if users, err := repo.ListUsers(); err == nil {
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	grouped := make(map[string][]*models.Reading)
	for _, r := range readings {
		if since != nil && r.CapturedAt.Before(*since) {
			continue
		}
		grouped[r.OwnerID] = append(grouped[r.OwnerID], r)
	}

	owners := make([]string, 0, len(grouped))
	for id := range grouped {
		owners = append(owners, id)
	}
	sort.Strings(owners)

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Wellness Export - %s\n\n", now.Format(models.DayLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, id := range owners {
		heading := id
		if name, ok := names[id]; ok {
			heading = fmt.Sprintf("%s (%s)", name, id)
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
		sb.WriteString("| Date | Stress | Heart rate | Blood oxygen | Sleep | Context |\n")
		sb.WriteString("|------|--------|------------|--------------|-------|---------|\n")
		for _, r := range grouped[id] {
			context := ""
			if r.MedicalContext != nil {
				context = *r.MedicalContext
			}
			sb.WriteString(fmt.Sprintf("| %s | %d%% | %d bpm | %d%% | %d%% | %s |\n",
				r.CalendarDay, r.StressLevel, r.HeartRate, r.BloodOxygen, r.SleepQuality, context))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
