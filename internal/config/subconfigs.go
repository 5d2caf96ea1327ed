package config

type PostgresConfig struct {
	DSN                          string `env:"DSN"`
	MaxOpenConnections           int    `env:"MAX_OPEN_CONNECTIONS" envDefault:"5"`
	MaxIdleConnections           int    `env:"MAX_IDLE_CONNECTIONS" envDefault:"5"`
	ConnectionMaxLifetimeSeconds int    `env:"CONNECTION_MAX_LIFETIME_SECONDS" envDefault:"0"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type TwilioConfig struct {
	AccountSID string `env:"ACCOUNT_SID"`
	AuthToken  string `env:"AUTH_TOKEN"`
	FromNumber string `env:"FROM_NUMBER"`
	Mode       string `env:"MODE"` // "live" or "simulate"
}

type RabbitMQConfig struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	VHost    string `env:"VHOST"`
	Exchange string `env:"EXCHANGE"`
	Queue    string `env:"QUEUE"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"` // empty disables the once-per-day guard
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
}

type RetryConfig struct {
	Attempts          int     `env:"ATTEMPTS"`
	DelayMilliseconds int     `env:"DELAY_MS"`
	Backoff           float64 `env:"BACKOFF"`
}
