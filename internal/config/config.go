package config

type Config interface {
	EnvConfig
	TokenConfig
}

type mainConfig struct {
	EnvVars
	Tokens
}

func New() Config {
	return mainConfig{}
}
