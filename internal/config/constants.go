package config

// Environment variable defaults
const (
	DefaultPort        = "8080"
	DefaultLogLevel    = "INFO"
	DefaultLogFormat   = "text"
	DefaultServiceName = "gachad"
	DefaultVersion     = "dev"
	DefaultEnvironment = "dev"
	DefaultDBUser      = "postgres"
	DefaultDBPassword  = "postgres"
	DefaultDBHost      = "localhost"
	DefaultDBPort      = "5432"
	DefaultDBName      = "gachad"
	DefaultGachaDir    = "configs/gacha"
)

// Gacha configuration file names, relative to GachaDir
const (
	FileBanners    = "banners.json"
	FileRoster     = "characters.json"
	FileMilestones = "milestones.json"
	FileExchange   = "exchange.json"
)
