// Package ehzconfig holds the configuration of the ehz server.
// Configuration is read from a YAML file and can be overridden
// by environment variables.
package ehzconfig

import (
	"os"
	"strings"
	"time"

	errgo "gopkg.in/errgo.v1"
	yaml "gopkg.in/yaml.v2"

	"github.com/rogpeppe/ehz/stream"
)

// Config holds the server configuration.
type Config struct {
	// ListenAddr holds the address for the HTTP server.
	ListenAddr string `yaml:"listen-addr"`
	// Stream configures the connection to the push channel.
	Stream StreamConfig `yaml:"stream"`
	// PrefsPath holds the path of the preferences database.
	// If it's empty, preferences are not persisted.
	PrefsPath string `yaml:"prefs-path"`
	// DefaultLocale holds the locale used until one is chosen.
	DefaultLocale string `yaml:"default-locale"`
	// LocalesFile holds the path of a YAML file with
	// additional or replacement locale strings.
	LocalesFile string `yaml:"locales-file"`
	// ImageDir holds the directory served under /images/.
	ImageDir string `yaml:"image-dir"`
	// Images holds the paths of the images shown on the page.
	Images []string `yaml:"images"`
	// RefreshPeriod holds the interval between image refreshes.
	RefreshPeriod time.Duration `yaml:"refresh-period"`
	// BufferSize holds the number of points on the live chart.
	BufferSize int `yaml:"buffer-size"`
	// NTPHost holds the NTP server used for timestamps.
	// If it's empty, the system clock is used.
	NTPHost string `yaml:"ntp-host"`
	// Log holds a loggo configuration string,
	// for example "<root>=INFO;ehz.stream=DEBUG".
	Log string `yaml:"log"`
}

// StreamConfig configures the push channel.
type StreamConfig struct {
	// Transport holds one of "sse", "ws", "mqtt" or "kafka".
	Transport string `yaml:"transport"`
	// URL holds the URL of an SSE or websocket stream,
	// or of the MQTT broker.
	URL string `yaml:"url"`
	// Topic holds the MQTT or Kafka topic.
	Topic string `yaml:"topic"`
	// Brokers holds the Kafka broker addresses.
	Brokers []string `yaml:"brokers"`
	// GroupID holds the Kafka consumer group.
	GroupID string `yaml:"group-id"`
	// ClientID holds the MQTT client id.
	ClientID string `yaml:"client-id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		ListenAddr:    ":8080",
		DefaultLocale: "de",
		Images: []string{
			"/images/strom-stunde-de.png",
			"/images/strom-tag-de.png",
			"/images/strom-woche-de.png",
		},
		RefreshPeriod: 60 * time.Second,
		Log:           "<root>=INFO",
	}
	cfg.Stream.setDefaults()
	return cfg
}

// DefaultEventsURL holds the event stream URL used by the sse
// transport when none is configured.
const DefaultEventsURL = "http://localhost:5000/events"

// setDefaults fills in the defaults that depend on the transport.
func (s *StreamConfig) setDefaults() {
	if s.Transport == "" {
		s.Transport = "sse"
	}
	if s.Transport == "sse" && s.URL == "" {
		s.URL = DefaultEventsURL
	}
}

// Parse parses a YAML configuration. Fields not
// mentioned in data keep their default values, except
// that the stream defaults only apply to the transport
// that's finally chosen.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	cfg.Stream = StreamConfig{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errgo.Notef(err, "cannot parse configuration")
	}
	cfg.Stream.setDefaults()
	return cfg, nil
}

// Load reads the configuration from the given file, applies
// any overrides from the environment and validates the result.
// If path is empty, only the defaults and the environment
// are used.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errgo.Mask(err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, errgo.Notef(err, "cannot load %q", path)
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, errgo.Mask(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errgo.Mask(err)
	}
	return cfg, nil
}

// ApplyEnv overrides configuration fields from
// environment variables looked up with getenv.
func (cfg *Config) ApplyEnv(getenv func(string) string) error {
	vars := []struct {
		name string
		set  func(string) error
	}{
		{"EHZ_LISTEN_ADDR", setString(&cfg.ListenAddr)},
		{"EHZ_STREAM_TRANSPORT", setString(&cfg.Stream.Transport)},
		{"EHZ_EVENTS_URL", setString(&cfg.Stream.URL)},
		{"EHZ_STREAM_TOPIC", setString(&cfg.Stream.Topic)},
		{"EHZ_KAFKA_BROKERS", func(s string) error {
			cfg.Stream.Brokers = strings.Split(s, ",")
			return nil
		}},
		{"EHZ_KAFKA_GROUP", setString(&cfg.Stream.GroupID)},
		{"EHZ_MQTT_USER", setString(&cfg.Stream.Username)},
		{"EHZ_MQTT_PASS", setString(&cfg.Stream.Password)},
		{"EHZ_PREFS_PATH", setString(&cfg.PrefsPath)},
		{"EHZ_DEFAULT_LOCALE", setString(&cfg.DefaultLocale)},
		{"EHZ_LOCALES_FILE", setString(&cfg.LocalesFile)},
		{"EHZ_IMAGE_DIR", setString(&cfg.ImageDir)},
		{"EHZ_REFRESH_PERIOD", func(s string) error {
			d, err := time.ParseDuration(s)
			if err != nil {
				return errgo.Mask(err)
			}
			cfg.RefreshPeriod = d
			return nil
		}},
		{"EHZ_NTP_HOST", setString(&cfg.NTPHost)},
		{"EHZ_LOG", setString(&cfg.Log)},
	}
	for _, v := range vars {
		s := getenv(v.name)
		if s == "" {
			continue
		}
		if err := v.set(s); err != nil {
			return errgo.Notef(err, "invalid value for $%s", v.name)
		}
	}
	return nil
}

func setString(p *string) func(string) error {
	return func(s string) error {
		*p = s
		return nil
	}
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.ListenAddr == "" {
		return errgo.New("no listen address configured")
	}
	if cfg.RefreshPeriod < 0 {
		return errgo.Newf("negative refresh period %v", cfg.RefreshPeriod)
	}
	if cfg.BufferSize < 0 {
		return errgo.Newf("negative buffer size %d", cfg.BufferSize)
	}
	if _, err := cfg.Stream.Dialer(); err != nil {
		return errgo.Mask(err)
	}
	return nil
}

// Dialer returns a dialer for the configured transport.
func (s *StreamConfig) Dialer() (stream.Dialer, error) {
	switch s.Transport {
	case "", "sse":
		if s.URL == "" {
			return nil, errgo.New("no event stream URL configured")
		}
		return &stream.SSEDialer{
			URL: s.URL,
		}, nil
	case "ws":
		if s.URL == "" {
			return nil, errgo.New("no websocket URL configured")
		}
		return &stream.WebsocketDialer{
			URL: s.URL,
		}, nil
	case "mqtt":
		if s.URL == "" || s.Topic == "" {
			return nil, errgo.New("MQTT transport needs broker URL and topic")
		}
		return &stream.MQTTDialer{
			Broker:   s.URL,
			Topic:    s.Topic,
			Username: s.Username,
			Password: s.Password,
			ClientID: s.ClientID,
		}, nil
	case "kafka":
		if len(s.Brokers) == 0 || s.Topic == "" {
			return nil, errgo.New("Kafka transport needs brokers and topic")
		}
		return &stream.KafkaDialer{
			Brokers: s.Brokers,
			Topic:   s.Topic,
			GroupID: s.GroupID,
		}, nil
	}
	return nil, errgo.Newf("unknown stream transport %q", s.Transport)
}
