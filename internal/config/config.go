package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables overriding config values.
// Nested keys are separated by a double underscore, for example
// VERSIONTEXT_SERVER__LISTEN or VERSIONTEXT_VERSION__RESOURCES.
const EnvPrefix = "VERSIONTEXT_"

type Configuration struct {
	Server        Server        `koanf:"server"`
	Version       Version       `koanf:"version"`
	HTTP          HTTP          `koanf:"http"`
	Logging       Logging       `koanf:"logging"`
	Mail          Mail          `koanf:"mail"`
	Notifications Notification  `koanf:"notifications"`
	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
}

type Server struct {
	Listen               string        `koanf:"listen" validate:"required"`
	PprofListen          string        `koanf:"listen_pprof"`
	MetricsListen        string        `koanf:"listen_metrics"`
	GracefulTimeout      time.Duration `koanf:"graceful_timeout" validate:"gt=0"`
	MaxConnections       int           `koanf:"max_connections" validate:"gte=0"`
	TLS                  TLS           `koanf:"tls"`
	IPHeader             string        `koanf:"ip_header"`
	HostHeaders          []string      `koanf:"host_headers"`
	SecretKeyHeaderName  string        `koanf:"secret_key_header_name" validate:"required"`
	SecretKeyHeaderValue string        `koanf:"secret_key_header_value"`
}

type TLS struct {
	PublicKey       string `koanf:"public_key" validate:"omitempty,file"`
	PrivateKey      string `koanf:"private_key" validate:"omitempty,file"`
	MTLSRootCA      string `koanf:"mtls_root_ca" validate:"omitempty,file"`
	MTLSCertSubject string `koanf:"mtls_cert_subject"`
}

// Enabled reports whether the admin listener should serve TLS.
func (t TLS) Enabled() bool {
	return t.PublicKey != "" && t.PrivateKey != ""
}

// Version holds the ordered list of version artifacts served on /version.txt.
type Version struct {
	Resources []string `koanf:"resources" validate:"dive,required"`
	BaseDir   string   `koanf:"base_dir" validate:"omitempty,dir"`
}

// HTTP configures the client used for http(s) version resources.
type HTTP struct {
	UserAgent string `koanf:"user_agent"`
	CertDir   string `koanf:"cert_dir" validate:"omitempty,dir"`
}

type Logging struct {
	File       string `koanf:"file"`
	MaxSize    int    `koanf:"max_size" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAge     int    `koanf:"max_age" validate:"gte=0"`
	Compress   bool   `koanf:"compress"`
}

type Mail struct {
	Enabled bool   `koanf:"enabled"`
	Server  string `koanf:"server" validate:"required_if=Enabled true"`
	Port    int    `koanf:"port" validate:"gte=0,lte=65535"`
	From    struct {
		Name string `koanf:"name"`
		Mail string `koanf:"mail" validate:"omitempty,email"`
	} `koanf:"from"`
	To       []string      `koanf:"to" validate:"required_if=Enabled true,dive,email"`
	User     string        `koanf:"user"`
	Password string        `koanf:"password"`
	TLS      bool          `koanf:"tls"`
	StartTLS bool          `koanf:"starttls"`
	SkipTLS  bool          `koanf:"skiptls"`
	Retries  int           `koanf:"retries" validate:"gte=0"`
	Timeout  time.Duration `koanf:"timeout"`
}

type Notification struct {
	Telegram NotificationTelegram `koanf:"telegram"`
	Discord  NotificationDiscord  `koanf:"discord"`
	Email    NotificationEmail    `koanf:"email"`
	SendGrid NotificationSendGrid `koanf:"sendgrid"`
	MSTeams  NotificationMSTeams  `koanf:"msteams"`
}

type NotificationTelegram struct {
	APIToken string  `koanf:"api_token"`
	ChatIDs  []int64 `koanf:"chat_ids"`
}
type NotificationDiscord struct {
	BotToken   string   `koanf:"bot_token"`
	OAuthToken string   `koanf:"oauth_token"`
	ChannelIDs []string `koanf:"channel_ids"`
}

type NotificationEmail struct {
	Sender     string   `koanf:"sender"`
	Server     string   `koanf:"server"`
	Port       int      `koanf:"port"`
	Username   string   `koanf:"username"`
	Password   string   `koanf:"password"`
	Recipients []string `koanf:"recipients"`
}

type NotificationSendGrid struct {
	APIKey        string   `koanf:"api_key"`
	SenderAddress string   `koanf:"sender_address"`
	SenderName    string   `koanf:"sender_name"`
	Recipients    []string `koanf:"recipients"`
}

type NotificationMSTeams struct {
	Webhooks []string `koanf:"webhooks"`
}

var defaultConfig = Configuration{
	Server: Server{
		Listen:              "127.0.0.1:8000",
		PprofListen:         "127.0.0.1:1234",
		MetricsListen:       "127.0.0.1:1235",
		GracefulTimeout:     10 * time.Second,
		SecretKeyHeaderName: "X-Secret-Key-Header",
	},
	Version: Version{
		Resources: []string{"classpath:/versions/version.txt"},
	},
	Logging: Logging{
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	},
	Mail: Mail{
		Port:    25,
		Retries: 3,
		Timeout: 10 * time.Second,
	},
	Timeout: 5 * time.Second,
}

// GetConfig loads the defaults, the json file f (if set) and the environment
// overrides, in that order, and validates the result.
func GetConfig(f string) (Configuration, error) {
	k := koanf.NewWithConf(koanf.Conf{
		Delim: ".",
	})

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return Configuration{}, err
	}

	if f != "" {
		if err := k.Load(file.Provider(f), json.Parser()); err != nil {
			return Configuration{}, fmt.Errorf("could not load config file %s: %w", f, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", transformEnv), nil); err != nil {
		return Configuration{}, fmt.Errorf("could not load environment: %w", err)
	}

	var config Configuration
	if err := k.Unmarshal("", &config); err != nil {
		return Configuration{}, err
	}

	if err := validate(config); err != nil {
		return Configuration{}, err
	}

	return config, nil
}

func transformEnv(k, v string) (string, interface{}) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	k = strings.ReplaceAll(k, "__", ".")
	switch k {
	case "version.resources", "server.host_headers", "mail.to":
		// an empty value is an empty list, not a list with one empty entry
		if v == "" {
			return k, []string{}
		}
		return k, strings.Split(v, ",")
	}
	return k, v
}

// validate returns a *multierror.Error holding every problem found
func validate(config Configuration) error {
	var result *multierror.Error

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, e := range validationErrors {
			result = multierror.Append(result, fmt.Errorf("invalid config value for %s: failed on %q", e.Namespace(), e.Tag()))
		}
	}

	if (config.Server.TLS.PublicKey == "") != (config.Server.TLS.PrivateKey == "") {
		result = multierror.Append(result, errors.New("please supply both a tls public and private key"))
	}

	if config.Server.TLS.MTLSCertSubject != "" && config.Server.TLS.MTLSRootCA == "" {
		result = multierror.Append(result, errors.New("mtls cert subject requires a mtls root ca"))
	}

	return result.ErrorOrNil()
}
