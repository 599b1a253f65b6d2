package speech

import "strings"

// Built-in persona to voice mapping. Unknown personas fall back to the
// default narrator voice.
const defaultVoiceID = "EXAVITQu4vr4xnSDxMaL"

var personaVoices = map[string]string{
	"wise":     "onwK4e9ZLuTAKqWW03F9",
	"mystic":   "ThT5KcBeYPX3keUQqHPh",
	"playful":  "jBpfuIE2acCO8z3wKNLl",
	"stoic":    "JBFqnCBsd6RMkjVDRZzb",
	"romantic": "XrExE9yKIg1WjnnlVkGX",
}

// VoiceForPersona resolves the voice used to render a persona.
func VoiceForPersona(persona string) string {
	if voice, ok := personaVoices[strings.ToLower(strings.TrimSpace(persona))]; ok {
		return voice
	}
	return defaultVoiceID
}
