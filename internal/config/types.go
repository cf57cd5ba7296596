package config

type Config struct {
	Version   int       `yaml:"version"`
	Paths     Paths     `yaml:"paths"`
	Tools     Tools     `yaml:"tools"`
	Auth      Auth      `yaml:"auth"`
	Playlists Playlists `yaml:"playlists"`
	Download  Download  `yaml:"download"`
}

// Paths anchors every file the program owns. Relative download roots are
// resolved against BaseDir.
type Paths struct {
	StateDir    string `yaml:"state_dir"`
	ToolsDir    string `yaml:"tools_dir"`
	BaseDir     string `yaml:"base_dir"`
	DefaultRoot string `yaml:"default_root"`
}

type Tools struct {
	FeedURL            string `yaml:"feed_url"`
	AssetName          string `yaml:"asset_name"`
	FeedTimeoutSeconds int    `yaml:"feed_timeout_seconds"`
	FFmpegArchiveURL   string `yaml:"ffmpeg_archive_url"`
}

type Auth struct {
	Browser     string `yaml:"browser"`
	Profile     string `yaml:"profile"`
	UserDataDir string `yaml:"user_data_dir,omitempty"`
}

type Playlists struct {
	ListingURL     string `yaml:"listing_url"`
	FreshnessHours int    `yaml:"freshness_hours"`
	PageSize       int    `yaml:"page_size"`
}

type Download struct {
	OutputTemplate        string   `yaml:"output_template"`
	ErrorsAsWarnings      bool     `yaml:"errors_as_warnings"`
	CommandTimeoutSeconds int      `yaml:"command_timeout_seconds"`
	ExtraArgs             []string `yaml:"extra_args,omitempty"`
}

const (
	DefaultFeedURL        = "https://api.github.com/repos/yt-dlp/yt-dlp-nightly-builds/releases/latest"
	DefaultListingURL     = "https://www.youtube.com/feed/playlists"
	DefaultOutputTemplate = "%(title)s [%(id)s].%(ext)s"
	DefaultRootName       = "ytf-downloads"
)

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Paths: Paths{
			StateDir:    defaultStateDir(),
			DefaultRoot: DefaultRootName,
		},
		Tools: Tools{
			FeedURL:            DefaultFeedURL,
			AssetName:          defaultAssetName(),
			FeedTimeoutSeconds: 15,
			FFmpegArchiveURL:   defaultFFmpegArchiveURL(),
		},
		Auth: Auth{
			Browser: "chrome",
			Profile: "Default",
		},
		Playlists: Playlists{
			ListingURL:     DefaultListingURL,
			FreshnessHours: 24,
			PageSize:       15,
		},
		Download: Download{
			OutputTemplate:   DefaultOutputTemplate,
			ErrorsAsWarnings: true,
		},
	}
}
