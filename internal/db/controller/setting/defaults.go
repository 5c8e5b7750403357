package setting

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iambhavikmistry/starter-kit/internal/db/models"
)

// oauthProviders lists the providers that get auth_* settings seeded.
// Must stay in sync with the oauth package allow-list.
var oauthProviders = []string{
	"facebook",
	"twitter",
	"linkedin",
	"google",
	"github",
	"gitlab",
	"bitbucket",
	"slack",
}

func opts(pairs ...[2]string) []models.SettingOption {
	out := make([]models.SettingOption, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.SettingOption{Key: p[0], Label: p[1]})
	}

	return out
}

func strptr(s string) *string { return &s }

// Defaults returns the full default settings catalog.
// This is the complete, fixed key space of the store: the seed process
// creates exactly these rows and runtime mutation is limited to their values.
func Defaults() []models.Setting {
	defaults := []models.Setting{
		// General settings
		{
			Key:         "site_name",
			Value:       strptr("Starter Kit"),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeText,
			Description: "The name of the platform displayed across the site.",
			IsPublic:    true,
		},
		{
			Key:         "site_description",
			Value:       strptr("An administrative back-office platform."),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeTextarea,
			Description: "A brief description of the platform.",
			IsPublic:    true,
		},
		{
			Key:         "timezone",
			Value:       strptr("UTC"),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeSelect,
			Description: "The default timezone for the platform.",
			Options: opts(
				[2]string{"UTC", "UTC"},
				[2]string{"America/New_York", "Eastern Time (US & Canada)"},
				[2]string{"America/Chicago", "Central Time (US & Canada)"},
				[2]string{"America/Denver", "Mountain Time (US & Canada)"},
				[2]string{"America/Los_Angeles", "Pacific Time (US & Canada)"},
				[2]string{"Europe/London", "London"},
				[2]string{"Europe/Paris", "Paris"},
				[2]string{"Europe/Berlin", "Berlin"},
				[2]string{"Asia/Kolkata", "India (Kolkata)"},
				[2]string{"Asia/Tokyo", "Tokyo"},
				[2]string{"Asia/Shanghai", "Shanghai"},
				[2]string{"Australia/Sydney", "Sydney"},
			),
		},
		{
			Key:         "date_format",
			Value:       strptr("2006-01-02"),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeSelect,
			Description: "The default date format used across the platform.",
			Options: opts(
				[2]string{"2006-01-02", "2026-01-15"},
				[2]string{"02/01/2006", "15/01/2026"},
				[2]string{"01/02/2006", "01/15/2026"},
				[2]string{"02 Jan 2006", "15 Jan 2026"},
				[2]string{"Jan 02, 2006", "Jan 15, 2026"},
				[2]string{"January 2, 2006", "January 15, 2026"},
			),
		},
		{
			Key:         "maintenance_mode",
			Value:       strptr("0"),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeBoolean,
			Description: "Enable maintenance mode to restrict access to the platform.",
		},
		{
			Key:         "allow_registration",
			Value:       strptr("1"),
			Group:       models.SettingGroupGeneral,
			Type:        models.SettingTypeBoolean,
			Description: "Allow new users to register on the platform.",
			IsPublic:    true,
		},

		// Mail settings
		{
			Key:         "mail_from_name",
			Value:       strptr("Starter Kit"),
			Group:       models.SettingGroupMail,
			Type:        models.SettingTypeText,
			Description: "The name used as the sender for outgoing emails.",
		},
		{
			Key:         "mail_from_address",
			Value:       strptr("noreply@example.com"),
			Group:       models.SettingGroupMail,
			Type:        models.SettingTypeText,
			Description: "The email address used as the sender for outgoing emails.",
		},
		{
			Key:         "mail_footer_text",
			Value:       strptr("Thank you for using our platform."),
			Group:       models.SettingGroupMail,
			Type:        models.SettingTypeTextarea,
			Description: "Text displayed in the footer of all outgoing emails.",
		},

		// SEO settings
		{
			Key:         "meta_title",
			Value:       strptr("Starter Kit"),
			Group:       models.SettingGroupSeo,
			Type:        models.SettingTypeText,
			Description: "Default meta title for the platform.",
			IsPublic:    true,
		},
		{
			Key:         "meta_description",
			Value:       strptr("An administrative back-office platform."),
			Group:       models.SettingGroupSeo,
			Type:        models.SettingTypeTextarea,
			Description: "Default meta description for search engines.",
			IsPublic:    true,
		},
		{
			Key:         "meta_keywords",
			Value:       strptr("admin, platform"),
			Group:       models.SettingGroupSeo,
			Type:        models.SettingTypeText,
			Description: "Default meta keywords for search engines (comma-separated).",
			IsPublic:    true,
		},

		// Social settings
		{
			Key:         "social_facebook",
			Value:       strptr(""),
			Group:       models.SettingGroupSocial,
			Type:        models.SettingTypeText,
			Description: "Facebook page URL.",
			IsPublic:    true,
		},
		{
			Key:         "social_twitter",
			Value:       strptr(""),
			Group:       models.SettingGroupSocial,
			Type:        models.SettingTypeText,
			Description: "Twitter/X profile URL.",
			IsPublic:    true,
		},
		{
			Key:         "social_instagram",
			Value:       strptr(""),
			Group:       models.SettingGroupSocial,
			Type:        models.SettingTypeText,
			Description: "Instagram profile URL.",
			IsPublic:    true,
		},
		{
			Key:         "social_linkedin",
			Value:       strptr(""),
			Group:       models.SettingGroupSocial,
			Type:        models.SettingTypeText,
			Description: "LinkedIn page URL.",
			IsPublic:    true,
		},

		// Billing settings
		{
			Key:         "currency",
			Value:       strptr("USD"),
			Group:       models.SettingGroupBilling,
			Type:        models.SettingTypeSelect,
			Description: "Default currency for the platform.",
			Options: opts(
				[2]string{"USD", "US Dollar (USD)"},
				[2]string{"EUR", "Euro (EUR)"},
				[2]string{"GBP", "British Pound (GBP)"},
				[2]string{"INR", "Indian Rupee (INR)"},
				[2]string{"JPY", "Japanese Yen (JPY)"},
				[2]string{"AUD", "Australian Dollar (AUD)"},
				[2]string{"CAD", "Canadian Dollar (CAD)"},
			),
		},
		{
			Key:         "tax_rate",
			Value:       strptr("0"),
			Group:       models.SettingGroupBilling,
			Type:        models.SettingTypeNumber,
			Description: "Default tax rate percentage applied to transactions.",
		},
	}

	// OAuth provider settings follow the auth_<provider>_* naming convention
	// the oauth gate resolves at request time.
	for _, provider := range oauthProviders {
		defaults = append(defaults,
			models.Setting{
				Key:         fmt.Sprintf("auth_%s_enabled", provider),
				Value:       strptr("0"),
				Group:       models.SettingGroupAuth,
				Type:        models.SettingTypeBoolean,
				Description: fmt.Sprintf("Enable sign-in with %s.", provider),
			},
			models.Setting{
				Key:         fmt.Sprintf("auth_%s_client_id", provider),
				Value:       strptr(""),
				Group:       models.SettingGroupAuth,
				Type:        models.SettingTypeText,
				Description: fmt.Sprintf("OAuth client ID for %s.", provider),
			},
			models.Setting{
				Key:         fmt.Sprintf("auth_%s_client_secret", provider),
				Value:       strptr(""),
				Group:       models.SettingGroupAuth,
				Type:        models.SettingTypeText,
				Description: fmt.Sprintf("OAuth client secret for %s.", provider),
			},
			models.Setting{
				Key:         fmt.Sprintf("auth_%s_redirect_uri", provider),
				Value:       strptr(""),
				Group:       models.SettingGroupAuth,
				Type:        models.SettingTypeText,
				Description: fmt.Sprintf("Callback URL override for %s (leave empty for the default).", provider),
			},
		)
	}

	return defaults
}

// Seed creates any missing catalog rows, leaving existing values untouched.
// Safe to run on every startup.
func Seed(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	for _, def := range Defaults() {
		var existing models.Setting

		err := db.Where(keyQueryPattern, def.Key).First(&existing).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check setting %s: %w", def.Key, err)
		}

		create := def
		if err := db.Create(&create).Error; err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", def.Key, err)
		}
	}

	return nil
}
