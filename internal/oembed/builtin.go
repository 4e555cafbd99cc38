package oembed

// Twitter returns the hand-registered Twitter provider. Twitter pages do
// not reliably declare discovery links, so its status URLs are claimed
// explicitly.
func Twitter() *Provider {
	return MustProvider("Twitter", "https://publish.twitter.com/oembed",
		"https://twitter.com/*/status/*",
		"https://twitter.com/*/statuses/*",
		"http://twitter.com/*/status/*",
		"http://twitter.com/*/statuses/*",
	)
}

// DefaultProviders returns the built-in set of well-known providers.
func DefaultProviders() []*Provider {
	return []*Provider{
		MustProvider("YouTube", "https://www.youtube.com/oembed",
			"http://*.youtube.com/watch*",
			"https://*.youtube.com/watch*",
			"http://*.youtube.com/v/*",
			"https://*.youtube.com/v/*",
			"https://*.youtube.com/shorts/*",
			"http://youtu.be/*",
			"https://youtu.be/*",
		),
		MustProvider("Vimeo", "https://vimeo.com/api/oembed.{format}",
			"http://vimeo.com/*",
			"https://vimeo.com/*",
			"http://www.vimeo.com/*",
			"https://www.vimeo.com/*",
			"https://player.vimeo.com/video/*",
		),
		MustProvider("Flickr", "https://www.flickr.com/services/oembed/",
			"http://*.flickr.com/photos/*",
			"https://*.flickr.com/photos/*",
			"http://flic.kr/p/*",
			"https://flic.kr/p/*",
		),
		MustProvider("SoundCloud", "https://soundcloud.com/oembed",
			"http://soundcloud.com/*",
			"https://soundcloud.com/*",
			"https://on.soundcloud.com/*",
		),
		MustProvider("Spotify", "https://open.spotify.com/oembed",
			"https://open.spotify.com/*",
			"spotify:*",
		),
		MustProvider("Dailymotion", "https://www.dailymotion.com/services/oembed",
			"http://*.dailymotion.com/video/*",
			"https://*.dailymotion.com/video/*",
			"https://dai.ly/*",
		),
		MustProvider("SlideShare", "https://www.slideshare.net/api/oembed/2",
			"http://www.slideshare.net/*/*",
			"https://www.slideshare.net/*/*",
		),
		MustProvider("Speaker Deck", "https://speakerdeck.com/oembed.{format}",
			"https://speakerdeck.com/*/*",
		),
		MustProvider("TED", "https://www.ted.com/services/v1/oembed.{format}",
			"http://*.ted.com/talks/*",
			"https://*.ted.com/talks/*",
		),
		MustProvider("Reddit", "https://www.reddit.com/oembed",
			"https://reddit.com/r/*/comments/*",
			"https://www.reddit.com/r/*/comments/*",
		),
		MustProvider("Streamable", "https://api.streamable.com/oembed.{format}",
			"https://streamable.com/*",
		),
		MustProvider("CodePen", "https://codepen.io/api/oembed",
			"https://codepen.io/*/pen/*",
		),
		MustProvider("Giphy", "https://giphy.com/services/oembed",
			"https://giphy.com/gifs/*",
			"https://media.giphy.com/media/*",
		),
		MustProvider("Kickstarter", "https://www.kickstarter.com/services/oembed",
			"http://www.kickstarter.com/projects/*",
			"https://www.kickstarter.com/projects/*",
		),
		MustProvider("TikTok", "https://www.tiktok.com/oembed",
			"https://www.tiktok.com/*/video/*",
		),
	}
}

// NewDefaultRegistry registers, in precedence order, custom providers, the
// Twitter provider, then the built-in set.
func NewDefaultRegistry(custom []*Provider, opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Register(custom...)
	r.Register(Twitter())
	r.Register(DefaultProviders()...)
	return r
}
