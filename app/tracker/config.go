package tracker

import (
	"github.com/dmitrymomot/autowhitelist/core/ingress"
	"github.com/dmitrymomot/autowhitelist/core/relay"
	"github.com/dmitrymomot/autowhitelist/core/server"
	"github.com/dmitrymomot/autowhitelist/core/verification"
	"github.com/dmitrymomot/autowhitelist/integration/database/pg"
	"github.com/dmitrymomot/autowhitelist/integration/database/redis"
	"github.com/dmitrymomot/autowhitelist/integration/email/postmark"
)

type Config struct {
	DB           pg.Config
	Redis        redis.Config
	Relay        relay.Config
	Verification verification.Config
	Ingress      ingress.Config
	Server       server.Config
	Postmark     postmark.Config

	AppName  string `env:"APP_NAME" envDefault:"autowhitelist-tracker"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ResourcesDir    string `env:"RESOURCES_DIR" envDefault:"./resources"`
	DevEmailDir     string `env:"DEV_EMAIL_DIR" envDefault:"./tmp/emails"`
	MaxPayloadBytes int64  `env:"MAX_PAYLOAD_BYTES" envDefault:"65536"`
	AllowAnyOrigin  bool   `env:"WS_ALLOW_ANY_ORIGIN" envDefault:"false"`
	RedisIngress    bool   `env:"REDIS_INGRESS_ENABLED" envDefault:"true"`
}

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
