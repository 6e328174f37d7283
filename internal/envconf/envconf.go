package envconf

// DBConf holds the database connection settings. SQLite is the default;
// setting Postgres to true switches the adapter over.
type DBConf struct {
	SQLite     bool   `env:"SQLITE,default=true"`
	SQLitePath string `env:"SQLITE_PATH,default=./watchdock.db"`

	Postgres     bool   `env:"POSTGRES,default=false"`
	PostgresHost string `env:"POSTGRES_HOST,default=localhost"`
	PostgresPort uint   `env:"POSTGRES_PORT,default=5432"`
	PostgresUser string `env:"POSTGRES_USER,default=postgres"`
	PostgresPass string `env:"POSTGRES_PASS"`
	PostgresDB   string `env:"POSTGRES_DB,default=watchdock"`
}

// QueueConf selects and configures the job queue backend.
type QueueConf struct {
	// Kind is either "memory" or "redis".
	Kind string `env:"QUEUE_KIND,default=memory"`

	RedisHost     string `env:"REDIS_HOST,default=localhost"`
	RedisPort     string `env:"REDIS_PORT,default=6379"`
	RedisUsername string `env:"REDIS_USERNAME"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	// MaxAttempts is the number of retries a failed job gets beyond its
	// first run.
	MaxAttempts int `env:"QUEUE_MAX_ATTEMPTS,default=3"`

	// BackoffBaseMs is the base for exponential retry backoff.
	BackoffBaseMs int `env:"QUEUE_BACKOFF_BASE_MS,default=500"`
}

// SchedulerConf configures the reconcile loop and the execution pipeline.
type SchedulerConf struct {
	// ReconcileIntervalSeconds is the period of the scheduler control loop.
	ReconcileIntervalSeconds int `env:"SCHEDULER_RECONCILE_INTERVAL,default=10"`

	// MaxTimeoutRetries bounds re-execution of checks that come back as
	// TIMEOUT before the timeout result is accepted as final.
	MaxTimeoutRetries int `env:"SCHEDULER_MAX_TIMEOUT_RETRIES,default=3"`

	// TimeoutRetryDelayMs is the fixed delay between timeout retries.
	TimeoutRetryDelayMs int `env:"SCHEDULER_TIMEOUT_RETRY_DELAY_MS,default=500"`

	// ExecutionTimeoutSeconds is the hard deadline for a single executor
	// invocation.
	ExecutionTimeoutSeconds int `env:"SCHEDULER_EXECUTION_TIMEOUT,default=30"`
}

type EnvDecoderConf struct {
	Debug      bool   `env:"DEBUG,default=true"`
	ServerPort uint   `env:"SERVER_PORT,default=10001"`
	SiteName   string `env:"SITE_NAME,default=watchdock"`
	SiteURL    string `env:"SITE_URL"`

	DBConf        DBConf
	QueueConf     QueueConf
	SchedulerConf SchedulerConf
}
