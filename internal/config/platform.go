package config

import "runtime"

const ffmpegBuildsBase = "https://github.com/BtbN/FFmpeg-Builds/releases/download/latest/"

func defaultAssetName() string {
	return assetNameFor(runtime.GOOS, runtime.GOARCH)
}

func assetNameFor(goos, goarch string) string {
	switch goos {
	case "windows":
		if goarch == "386" {
			return "yt-dlp_x86.exe"
		}
		return "yt-dlp.exe"
	case "darwin":
		return "yt-dlp_macos"
	case "linux":
		switch goarch {
		case "arm64":
			return "yt-dlp_linux_aarch64"
		case "arm":
			return "yt-dlp_linux_armv7l"
		}
		return "yt-dlp_linux"
	default:
		return "yt-dlp"
	}
}

func defaultFFmpegArchiveURL() string {
	return ffmpegArchiveURLFor(runtime.GOOS, runtime.GOARCH)
}

// ffmpegArchiveURLFor returns "" where no prebuilt bundle is published; the
// provisioner then relies on an ffmpeg already on PATH.
func ffmpegArchiveURLFor(goos, goarch string) string {
	switch {
	case goos == "windows" && goarch == "amd64":
		return ffmpegBuildsBase + "ffmpeg-master-latest-win64-gpl.zip"
	case goos == "windows" && goarch == "arm64":
		return ffmpegBuildsBase + "ffmpeg-master-latest-winarm64-gpl.zip"
	case goos == "linux" && goarch == "amd64":
		return ffmpegBuildsBase + "ffmpeg-master-latest-linux64-gpl.tar.xz"
	case goos == "linux" && goarch == "arm64":
		return ffmpegBuildsBase + "ffmpeg-master-latest-linuxarm64-gpl.tar.xz"
	default:
		return ""
	}
}

// ExecutableName appends the platform executable suffix.
func ExecutableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
