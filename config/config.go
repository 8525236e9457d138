package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"phone-order-api/events"
)

const defaultJWTSecret = "phone_orders_dev_secret"

var (
	DB *gorm.DB

	// JWTSecret used to sign tokens
	JWTSecret = []byte(defaultJWTSecret)

	App = Settings{TokenTTL: 24 * time.Hour}

	// Events receives order lifecycle events from the handlers.
	Events events.Dispatcher = events.Discard{}
)

type Settings struct {
	Port        string `envconfig:"PORT" default:"8080"`
	WebhookPort string `envconfig:"WEBHOOK_PORT" default:"8081"`
	GinMode     string `envconfig:"GIN_MODE"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string        `envconfig:"DATABASE_URL" default:"phone_orders.db"`
	JWTSecret   string        `envconfig:"JWT_SECRET"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	RetellAPIKey  string `envconfig:"RETELL_API_KEY"`
	RetellAgentID string `envconfig:"RETELL_AGENT_ID"`
	RetellBaseURL string `envconfig:"RETELL_BASE_URL" default:"https://api.retellai.com"`
	SIPDomain     string `envconfig:"SIP_DOMAIN" default:"5t4n6j0wnrl.sip.livekit.cloud"`

	TwilioAccountID   string `envconfig:"TWILIO_ACCOUNT_ID"`
	TwilioAuthToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `envconfig:"TWILIO_PHONE_NUMBER"`

	AMQPURL             string `envconfig:"AMQP_URL"`
	OrderEventsExchange string `envconfig:"ORDER_EVENTS_EXCHANGE" default:"order_events"`

	APIBaseURL  string `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	SessionFile string `envconfig:"SESSION_FILE" default:".phone-orders-session.json"`
}

// SMSEnabled reports whether Twilio credentials are configured.
func (s Settings) SMSEnabled() bool {
	return s.TwilioAccountID != "" && s.TwilioAuthToken != "" && s.TwilioPhoneNumber != ""
}

// Load reads .env (when present) and the environment into App.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env not loaded")
	}
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return err
	}
	App = s
	if s.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using the development secret")
		JWTSecret = []byte(defaultJWTSecret)
	} else {
		JWTSecret = []byte(s.JWTSecret)
	}
	return nil
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.WithField("level", level).Warn("Unknown LOG_LEVEL, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
