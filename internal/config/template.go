package config

import "fmt"

func DefaultTemplate() string {
	return fmt.Sprintf(`version: 1
paths:
  state_dir: %q
  # tools_dir defaults to <state_dir>/tools
  # base_dir defaults to the home directory; relative roots resolve against it
  default_root: %q
tools:
  feed_url: %q
  asset_name: %q
  feed_timeout_seconds: 15
  ffmpeg_archive_url: %q
auth:
  browser: "chrome"
  profile: "Default"
playlists:
  listing_url: %q
  freshness_hours: 24
  page_size: 15
download:
  output_template: %q
  errors_as_warnings: true
  command_timeout_seconds: 0
  extra_args: []
`, defaultStateDir(), DefaultRootName, DefaultFeedURL, defaultAssetName(), defaultFFmpegArchiveURL(), DefaultListingURL, DefaultOutputTemplate)
}
