package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	APIBase               string   `yaml:"apiBase"`
	Protocol              Protocol `yaml:"protocol"`
	RequestTimeoutSeconds int      `yaml:"requestTimeoutSeconds"`
	DownloadDir           string   `yaml:"downloadDir"`
	StatusResetMs         int      `yaml:"statusResetMs"`
	DeleteStatusResetMs   int      `yaml:"deleteStatusResetMs"`
	ReloadConcurrency     int      `yaml:"reloadConcurrency"`
	ReloadRatePerSecond   int      `yaml:"reloadRatePerSecond,omitempty"`
	ListenPort            int      `yaml:"listenPort"`
	NotifyWS              bool     `yaml:"notifyWs"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log            string
	UseConfigPath  string
	UseAPIBase     string
	UseProtocol    string
	UseDownloadDir string
	UseListenPort  int
	JSONOutput     bool // print machine-readable output instead of tables
}
