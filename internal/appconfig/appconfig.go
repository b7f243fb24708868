package appconfig

import (
	"bytes"
	"errors"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host         string             `yaml:"host"`
	BasePath     string             `yaml:"basePath"`
	Environment  string             `yaml:"environment"`
	Database     DatabaseConfig     `yaml:"database"`
	Pulsar       PulsarConfig       `yaml:"pulsar"`
	Redis        RedisConfig        `yaml:"redis"`
	AWS          AWSConfig          `yaml:"aws"`
	Email        EmailConfig        `yaml:"email"`
	WhatsApp     WhatsAppConfig     `yaml:"whatsapp"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Calendar     CalendarConfig     `yaml:"calendar"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Distribution DistributionConfig `yaml:"distribution"`
	Worker       WorkerConfig       `yaml:"worker"`
}

// DatabaseConfig defines the database connection details
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
	TopicConsumer string `yaml:"topicConsumer"`
	Subscription  string `yaml:"subscription"`
}

// RedisConfig locates the quota counter store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// EmailConfig defines the outbound email identity
type EmailConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Sender      string `yaml:"sender"`
	ReplyTo     string `yaml:"replyTo"`
	TestMode    bool   `yaml:"testMode"`
	SubjectLine string `yaml:"subjectLine"`
}

// WhatsAppConfig defines the Graph API connection and send quotas
type WhatsAppConfig struct {
	Enabled       bool   `yaml:"enabled"`
	APIURL        string `yaml:"apiUrl"`
	APIToken      string `yaml:"apiToken"`
	PhoneNumberID string `yaml:"phoneNumberId"`
	AppSecret     string `yaml:"appSecret"`
	VerifyToken   string `yaml:"verifyToken"`
	DailyLimit    int    `yaml:"dailyLimit"`
	HourlyLimit   int    `yaml:"hourlyLimit"`
	TestMode      bool   `yaml:"testMode"`
}

// TelegramConfig defines the manager notification channel
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// OpenAIConfig defines the language model used for message work
type OpenAIConfig struct {
	APIKey       string `yaml:"apiKey"`
	Model        string `yaml:"model"`
	UseTemplates bool   `yaml:"useTemplates"`
}

// CalendarConfig defines the Google Calendar integration
type CalendarConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CredentialsFile   string `yaml:"credentialsFile"`
	CalendarID        string `yaml:"calendarId"`
	Timezone          string `yaml:"timezone"`
	BusinessStartHour int    `yaml:"businessStartHour"`
	BusinessEndHour   int    `yaml:"businessEndHour"`
	MeetingMinutes    int    `yaml:"meetingMinutes"`
}

// Rule is a weighted keyword match applied during scoring
type Rule struct {
	Tag    string   `yaml:"tag"`
	Any    []string `yaml:"any"`
	Weight int      `yaml:"weight"`
}

// ScoringConfig drives the lead scoring engine
type ScoringConfig struct {
	CompanyRules  []Rule `yaml:"companyRules"`
	Penalties     []Rule `yaml:"penalties"`
	VerifiedEmail int    `yaml:"verifiedEmail"`
	HasPhone      int    `yaml:"hasPhone"`
	HasLinkedin   int    `yaml:"hasLinkedin"`
	HasWebsite    int    `yaml:"hasWebsite"`
	HotThreshold  int    `yaml:"hotThreshold"`
	WarmThreshold int    `yaml:"warmThreshold"`
}

// DistributionConfig caps how far a rep can be loaded
type DistributionConfig struct {
	DefaultCapacity int `yaml:"defaultCapacity"`
}

// WorkerConfig tunes the automation loop
type WorkerConfig struct {
	IntervalMinutes      int    `yaml:"intervalMinutes"`
	FollowUpAfterDays    int    `yaml:"followUpAfterDays"`
	NextFollowUpDays     int    `yaml:"nextFollowUpDays"`
	DailySummaryAt       string `yaml:"dailySummaryAt"`
	BulkOutreachEnabled  bool   `yaml:"bulkOutreachEnabled"`
	BulkOutreachMaxBatch int    `yaml:"bulkOutreachMaxBatch"`
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		err := errors.New("config file path is required")
		log.Error().Err(err).Msg("config file not provided")
		return nil, err
	}

	// Parse the template file
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		log.Error().Err(err).Msg("error parsing config file template")
		return nil, err
	}

	// Create a map of environment variables
	envVars := loadEnvVars()

	// Execute the template with environment variables
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, envVars)
	if err != nil {
		log.Error().Err(err).Msg("error executing config file template")
		return nil, err
	}

	// Load and unmarshal the YAML
	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config YAML")
		return nil, err
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.WhatsApp.DailyLimit == 0 {
		c.WhatsApp.DailyLimit = 200
	}
	if c.WhatsApp.HourlyLimit == 0 {
		c.WhatsApp.HourlyLimit = 20
	}
	if c.Calendar.BusinessEndHour == 0 {
		c.Calendar.BusinessEndHour = 17
	}
	if c.Calendar.BusinessStartHour == 0 {
		c.Calendar.BusinessStartHour = 9
	}
	if c.Calendar.MeetingMinutes == 0 {
		c.Calendar.MeetingMinutes = 30
	}
	if c.Scoring.HotThreshold == 0 {
		c.Scoring.HotThreshold = 70
	}
	if c.Scoring.WarmThreshold == 0 {
		c.Scoring.WarmThreshold = 40
	}
	if c.Worker.IntervalMinutes == 0 {
		c.Worker.IntervalMinutes = 15
	}
	if c.Worker.FollowUpAfterDays == 0 {
		c.Worker.FollowUpAfterDays = 2
	}
	if c.Worker.NextFollowUpDays == 0 {
		c.Worker.NextFollowUpDays = 7
	}
	if c.Worker.DailySummaryAt == "" {
		c.Worker.DailySummaryAt = "09:00"
	}
	if c.Distribution.DefaultCapacity == 0 {
		c.Distribution.DefaultCapacity = 50
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

// IsDev reports whether the service runs with development conveniences
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Environment, "dev") || strings.EqualFold(c.Environment, "development")
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
