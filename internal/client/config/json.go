package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/aidaily-app/aidaily/internal/flagx"
	"github.com/aidaily-app/aidaily/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, if any. Missing file path means nothing is loaded; an
// unreadable or invalid file panics, matching flag misuse behavior.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
