// Package banner renders the startup banner.
package banner

import "fmt"

const art = `
 _ __   ___ _ __| |_ __ _  __ _
| '_ \ / _ \ '__| __/ _` + "`" + ` |/ _` + "`" + ` |
| | | |  __/ |  | || (_| | (_| |
|_| |_|\___|_|   \__\__,_|\__, |
                          |___/
`

// Banner returns the banner followed by the version line.
func Banner(version string) string {
	return fmt.Sprintf("%s  named entity tagger %s\n\n", art, version)
}
