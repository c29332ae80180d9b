package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Dir               string `usage:"data directory"`
	Statics           string `usage:"statics directory"`
	Views             string `usage:"view definitions file (yaml), reloaded on change"`
	PageSize          int    `usage:"default page size for views without one"`
	LogLevel          string `usage:"log level: debug, info, warn, error"`
	EnableCompression bool   `usage:"gzip responses"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          "127.0.0.1:8080",
		Dir:               "data",
		Statics:           "",
		Views:             "views.yaml",
		PageSize:          20,
		LogLevel:          "info",
		EnableCompression: true,
		ShowBanner:        true,
		ShowConfig:        false,
	}
}
