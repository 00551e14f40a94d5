package proxy

// Config contains completion proxy configuration.
//   - URL: completion endpoint receiving {prompt, systemPrompt, model, authToken|deviceId}
//   - Timeout: request timeout in seconds
//   - AuthToken / DeviceID: caller identity; the token wins when both are set
//   - Models: models routed to the proxy; empty means every model
type Config struct {
	URL       string   `env:"PROXY_URL"`
	Timeout   int      `env:"PROXY_TIMEOUT"    envDefault:"60"`
	AuthToken string   `env:"PROXY_AUTH_TOKEN"`
	DeviceID  string   `env:"PROXY_DEVICE_ID"`
	Models    []string `env:"PROXY_MODELS"     envSeparator:","`
}
