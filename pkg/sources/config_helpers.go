package sources

import (
	"fmt"
	"strings"
)

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(s Source, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

// ConfigStringMap returns the nested string map stored under key; scalar values are stringified.
func ConfigStringMap(s Source, key string) map[string]string {
	raw, ok := s.Config[key]
	if !ok {
		return nil
	}
	in, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			out[k] = ""
			continue
		}
		out[k] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigRefererKey        = "referer"
	ConfigAcceptKey         = "accept"
	ConfigAcceptLanguageKey = "accept_language"

	// declarations sources
	ConfigLinkPatternKey     = "link_pattern"
	ConfigWrapperSelectorKey = "wrapper_selector"

	// news sources
	ConfigContentSelectorKey = "content_selector"
	ConfigQueryKey           = "query"
)

// Headers builds the common request headers from a source config (skips empty values).
func Headers(s Source) map[string]string {
	headers := make(map[string]string, 4)

	if v := ConfigString(s, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigRefererKey, ""); v != "" {
		headers["Referer"] = v
	}
	if v := ConfigString(s, ConfigAcceptKey, ""); v != "" {
		headers["Accept"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}

	return headers
}
