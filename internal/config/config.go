package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Reviewers ReviewersConfig `mapstructure:"reviewers"`
	Report    ReportConfig    `mapstructure:"report"`
	Sync      SyncConfig      `mapstructure:"sync"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GitHubConfig struct {
	Repository        string   `mapstructure:"repository"`
	ExtraRepositories []string `mapstructure:"-"`
	GHPath            string   `mapstructure:"gh_path"`
	Token             string   `mapstructure:"token"`
	PRLimit           int      `mapstructure:"pr_limit"`
}

type ReviewersConfig struct {
	LoginUsersB64 string `mapstructure:"login_users_b64"`
}

type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type SyncConfig struct {
	Enabled bool `mapstructure:"enabled"`
	DryRun  bool `mapstructure:"dry_run"`
}

// Load загружает .env, config.yaml (если есть) и переопределяет значения из переменных окружения
func Load(envFiles ...string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load(envFiles...)

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.GitHub.ExtraRepositories = splitRepositories(v.GetStringSlice("github.extra_repositories"))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("github.gh_path", "gh")
	v.SetDefault("github.pr_limit", 100)
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.dry_run", false)
	v.SetDefault("server.port", "8080")
}

// bindEnvVariables явно связывает переменные окружения с ключами конфига
func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")

	// GitHub
	v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	v.BindEnv("github.extra_repositories", "EXTRA_REPOSITORIES")
	v.BindEnv("github.gh_path", "GH_PATH")
	v.BindEnv("github.token", "GH_TOKEN")
	v.BindEnv("github.pr_limit", "PR_LIMIT")

	// Reviewers
	v.BindEnv("reviewers.login_users_b64", "LOGIN_USERS_B64")

	// Report
	v.BindEnv("report.output_dir", "OUTPUT_DIR")

	// Sync
	v.BindEnv("sync.enabled", "SYNC_ENABLED")
	v.BindEnv("sync.dry_run", "SYNC_DRY_RUN")
}

// splitRepositories разбивает список репозиториев по запятым и пробелам
func splitRepositories(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, repo := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			out = append(out, repo)
		}
	}
	return out
}

// Repositories возвращает основной и дополнительные репозитории без повторов.
// Пустая строка означает репозиторий текущего каталога.
func (c *Config) Repositories() []string {
	seen := make(map[string]bool)
	var repos []string
	for _, r := range append([]string{c.GitHub.Repository}, c.GitHub.ExtraRepositories...) {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		repos = append(repos, r)
	}
	if len(repos) == 0 {
		return []string{""}
	}
	return repos
}

// GetAddress возвращает адрес сервера в формате host:port
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
