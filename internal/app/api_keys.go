package app

import "net/http"

// RequestAPIKey returns the key sent in the "key" query parameter, or in the
// X-API-Key header when the parameter is absent.
func RequestAPIKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	return r.Header.Get("X-API-Key")
}

func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(RequestAPIKey(r))
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	for _, validKey := range app.Config.ApiKeys {
		if key == validKey {
			return false
		}
	}

	return true
}
