package config

import "github.com/jmpark/outageboard/internal/core"

// CategoryPage binds one outage-tracker category listing to the
// category records scraped from it are tagged with.
type CategoryPage struct {
	Category core.Category
	URL      string
}

// The category lists are fixed and closed; their order is also the
// duplicate-name tie-break order during aggregation, so it must stay
// stable.
var categoryPages = map[core.Region][]CategoryPage{
	core.RegionUS: {
		{core.CategoryTelecom, "https://downdetector.com/telecom/"},
		{core.CategoryOnlineServices, "https://downdetector.com/online-services/"},
		{core.CategorySocialMedia, "https://downdetector.com/social-media/"},
		{core.CategoryFinance, "https://downdetector.com/finance/"},
		{core.CategoryGaming, "https://downdetector.com/gaming/"},
	},
	core.RegionJP: {
		{core.CategoryTelecom, "https://downdetector.jp/telecom/"},
		{core.CategoryOnlineServices, "https://downdetector.jp/online-services/"},
		{core.CategorySocialMedia, "https://downdetector.jp/social-media/"},
		{core.CategoryFinance, "https://downdetector.jp/finance/"},
		{core.CategoryGaming, "https://downdetector.jp/gaming/"},
	},
}

func CategoryPages(region core.Region) []CategoryPage {
	return categoryPages[region]
}

// DefaultWatchlist seeds the company registry the first time a region
// is scraped, so the dashboard is not empty before the first cycle
// completes.
func DefaultWatchlist() []string {
	return []string{
		"Apple Store",
		"Microsoft Azure",
		"Google Cloud",
		"Instagram",
		"Netflix",
		"Twitch",
		"Dropbox",
		"Facebook",
		"Facebook Messenger",
		"Amazon Web Services",
		"iTunes",
		"T-Mobile",
		"Amazon Prime Video",
		"Disney+",
		"Outlook.com",
		"Twitter",
		"Discord",
		"Gmail",
		"Zoom",
		"TikTok",
		"Starlink",
		"Verizon Wireless",
		"Telegram",
		"Cloudflare",
		"AT&T",
		"Office 365",
		"Youtube",
		"Microsoft Teams",
		"Roblox",
		"Skype",
	}
}
