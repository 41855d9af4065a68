package calendar

import "net/http"

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithCalendarID(id string) Option {
	return func(c *Config) {
		c.calendarID = id
	}
}

func WithAuthToken(token string) Option {
	return func(c *Config) {
		c.authToken = token
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
