package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var config *Config
var m sync.Mutex

// Config is the root application configuration, loaded from a YAML file via
// viper and unmarshaled into this struct-of-structs.
type Config struct {
	Env        string     `yaml:"env"`
	App        App        `yaml:"app"`
	HttpServer HttpServer `yaml:"httpServer"`
	Log        Log        `yaml:"log"`
	Postgres   Postgres   `yaml:"postgres"`
	Redis      []Redis    `yaml:"redis"`
	External   External   `yaml:"external"`
	Tagger     Tagger     `yaml:"tagger"`
}

// HttpServer configures the Fiber listener.
type HttpServer struct {
	Port       int    `yaml:"port"`
	SwaggerURL string `yaml:"swaggerURL"`
}

// Log configures the zap logger.
type Log struct {
	Level           string `yaml:"level"`
	StacktraceLevel string `yaml:"stacktraceLevel"`
	FileEnabled     bool   `yaml:"fileEnabled"`
	FileSize        int    `yaml:"fileSize"`
	FilePath        string `yaml:"filePath"`
	FileCompress    bool   `yaml:"fileCompress"`
	MaxAge          int    `yaml:"maxAge"`
	MaxBackups      int    `yaml:"maxBackups"`
}

// App holds process-wide identity and auth secrets.
type App struct {
	Name             string `yaml:"name"`
	NameSlug         string `yaml:"nameSlug"`
	JWTSecret        string `yaml:"jwtSecret"`
	InternalScopeKey string `yaml:"internalScopeKey"`
}

// Postgres configures the pgx connection pool backing TagRepository.
type Postgres struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	Schema          string `yaml:"schema"`
	MaxConnections  int32  `yaml:"maxConnections"`
	MaxConnIdleTime int32  `yaml:"maxConnIdleTime"`
}

// Redis describes one node; a single entry uses redis.Client, more than one
// selects redis.ClusterClient (see internal/db/rdb).
type Redis struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

// External points at the user-directory and post-directory collaborators.
type External struct {
	UserServiceBaseURL string        `yaml:"userServiceBaseURL"`
	PostServiceBaseURL string        `yaml:"postServiceBaseURL"`
	Timeout            time.Duration `yaml:"timeout"`
}

// Tagger holds tuning knobs for the orchestrator and its caches.
type Tagger struct {
	TagCacheTTL        time.Duration `yaml:"tagCacheTTL"`
	PostCacheTTL       time.Duration `yaml:"postCacheTTL"`
	UserCacheTTL       time.Duration `yaml:"userCacheTTL"`
	FreqCacheTTL       time.Duration `yaml:"freqCacheTTL"`
	SnapshotTTL        time.Duration `yaml:"snapshotTTL"`
	FrequentMiscLimit  int           `yaml:"frequentMiscLimit"`
	FrequentGroupLimit int           `yaml:"frequentGroupLimit"`
	CounterMaxRetries  int           `yaml:"counterMaxRetries"`
}

func GetConfig() *Config {
	return config
}

func SetConfig(configFile string) {
	m.Lock()
	defer m.Unlock()

	viper.SetConfigFile(configFile)
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("Error getting config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		fmt.Println("Unable to decode into struct, ", err)
	}

	applyDefaults(config)
}

func applyDefaults(c *Config) {
	if c.Tagger.TagCacheTTL == 0 {
		c.Tagger.TagCacheTTL = time.Hour
	}
	if c.Tagger.PostCacheTTL == 0 {
		c.Tagger.PostCacheTTL = time.Minute
	}
	if c.Tagger.UserCacheTTL == 0 {
		c.Tagger.UserCacheTTL = time.Hour
	}
	if c.Tagger.FreqCacheTTL == 0 {
		c.Tagger.FreqCacheTTL = time.Hour
	}
	if c.Tagger.SnapshotTTL == 0 {
		c.Tagger.SnapshotTTL = 60 * time.Second
	}
	if c.Tagger.FrequentMiscLimit == 0 {
		c.Tagger.FrequentMiscLimit = 25
	}
	if c.Tagger.FrequentGroupLimit == 0 {
		c.Tagger.FrequentGroupLimit = 10
	}
	if c.Tagger.CounterMaxRetries == 0 {
		c.Tagger.CounterMaxRetries = 3
	}
	if c.External.Timeout == 0 {
		c.External.Timeout = 30 * time.Second
	}
}
