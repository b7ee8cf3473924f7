package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         string
	MusicDir     string
	Bitrate      string
	StationName  string
	MaxClients   int
	SampleRate   string
	Channels     string
	PlaylistFile string
	WebDir       string
	DJUsername   string
	DJPassword   string
	JWTSecret    string
	Timezone     string

	// APIAddr is the listen address for internal/api's control and
	// diagnostics HTTP surface.
	APIAddr string

	// EncodedReservoirMaxBytes/MaxStreams and DecodedReservoirMaxJiffies
	// bound the two reservoirs (internal/reservoir), mirroring
	// ohPipeline's kMaxSizeBytes/kMaxStreamCount/kMaxJiffies constants.
	EncodedReservoirMaxBytes   int
	EncodedReservoirMaxStreams int
	DecodedReservoirMaxJiffies uint64

	// GorgeJiffies is how much audio the decoded reservoir withholds
	// at the start of each stream before releasing any of it, so a
	// slow network doesn't trigger an immediate starvation ramp. Must
	// be >= StarvationBelowJiffies.
	GorgeJiffies uint64

	// Ramp durations, in jiffies, for the flow-control stages.
	RampLongJiffies       uint64
	RampShortJiffies      uint64
	StarvationRampJiffies uint64
	StarvationBelowJiffies uint64

	// VariableDelayDefaultJiffies is loaded from the environment but is
	// not passed to the pipeline; both VariableDelay instances start
	// with a zero target.
	VariableDelayDefaultJiffies uint64

	// Qobuz application credentials (internal/protocol/qobuz).
	QobuzAppID     string
	QobuzAppSecret string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8000"),
		MusicDir:     getEnv("MUSIC_DIR", "./music"),
		Bitrate:      getEnv("BITRATE", "128k"),
		StationName:  getEnv("STATION_NAME", "Denpa Radio"),
		MaxClients:   getEnvAsInt("MAX_CLIENTS", 100),
		SampleRate:   getEnv("SAMPLE_RATE", "44100"),
		Channels:     getEnv("CHANNELS", "2"),
		PlaylistFile: getEnv("PLAYLIST_FILE", "./data/playlists.json"),
		WebDir:       getEnv("WEB_DIR", "./web/dist"),
		DJUsername:   getEnv("DJ_USERNAME", "dj"),
		DJPassword:   getEnv("DJ_PASSWORD", "denpa"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production-please"),
		Timezone:     getEnv("TIMEZONE", ""),

		APIAddr: getEnv("API_ADDR", ":8001"),

		EncodedReservoirMaxBytes:   getEnvAsInt("ENCODED_RESERVOIR_MAX_BYTES", 12*1024*1024),
		EncodedReservoirMaxStreams: getEnvAsInt("ENCODED_RESERVOIR_MAX_STREAMS", 5),
		DecodedReservoirMaxJiffies: getEnvAsUint64("DECODED_RESERVOIR_MAX_JIFFIES", 5*56448000),
		GorgeJiffies:               getEnvAsUint64("GORGE_JIFFIES", 56448000), // 1s

		RampLongJiffies:        getEnvAsUint64("RAMP_LONG_JIFFIES", 56448000),       // 1s
		RampShortJiffies:       getEnvAsUint64("RAMP_SHORT_JIFFIES", 56448000/20),   // 50ms
		StarvationRampJiffies:  getEnvAsUint64("STARVATION_RAMP_JIFFIES", 56448000/20),
		StarvationBelowJiffies: getEnvAsUint64("STARVATION_BELOW_JIFFIES", 56448000/2), // 500ms

		VariableDelayDefaultJiffies: getEnvAsUint64("VARIABLE_DELAY_DEFAULT_JIFFIES", 56448000/5), // 200ms

		QobuzAppID:     getEnv("QOBUZ_APP_ID", ""),
		QobuzAppSecret: getEnv("QOBUZ_APP_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsUint64(name string, defaultVal uint64) uint64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultVal
}
