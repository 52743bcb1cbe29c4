package services

import (
	"errors"
	"strconv"

	"github.com/okovalenko/coursereview-backend/internal/models"
	"github.com/okovalenko/coursereview-backend/internal/utils"
	"gorm.io/gorm"
)

// SettingsService stores the site-wide display settings: theme color and
// the page sizes of the review and moderation listings.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) Get(name, defaultValue string) string {
	var setting models.Setting
	if err := s.db.Where("name = ?", name).First(&setting).Error; err != nil {
		return defaultValue
	}
	return setting.Value
}

func (s *SettingsService) GetInt(name string, defaultValue int) int {
	value, err := strconv.Atoi(s.Get(name, strconv.Itoa(defaultValue)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func (s *SettingsService) Set(name, value string) error {
	if name == models.SettingColorTheme && !utils.IsValidColor(value) {
		return errors.New("invalid color value")
	}

	var setting models.Setting
	err := s.db.Where("name = ?", name).First(&setting).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return s.db.Create(&models.Setting{Name: name, Value: value}).Error
	}
	setting.Value = value
	return s.db.Save(&setting).Error
}

func (s *SettingsService) ColorTheme() string {
	return s.Get(models.SettingColorTheme, models.DefaultColorTheme)
}

func (s *SettingsService) PerPageReview() int {
	return s.GetInt(models.SettingPerPageReview, models.DefaultPerPageReview)
}

func (s *SettingsService) PerPageModerate() int {
	return s.GetInt(models.SettingPerPageModerate, models.DefaultPerPageModerate)
}

func (s *SettingsService) All() map[string]string {
	return map[string]string{
		models.SettingColorTheme:      s.ColorTheme(),
		models.SettingPerPageReview:   strconv.Itoa(s.PerPageReview()),
		models.SettingPerPageModerate: strconv.Itoa(s.PerPageModerate()),
	}
}
