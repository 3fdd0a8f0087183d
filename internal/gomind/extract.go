package gomind

import "strings"

// labelCorrections fixes known upstream typos in clinical annotations.
var labelCorrections = map[string]string{
	"Glisea Basal":            "Glicemia Basal",
	"Recuendo de Eritrocitos": "Recuento de Eritrocitos",
}

// UnknownParameter is the label assigned when an annotation carries no
// recognizable parameter name.
const UnknownParameter = "Desconocido"

// ExtractParameter derives the canonical parameter name from a free-text
// clinical annotation. Annotations either embed the name after a "VALOR "
// token (terminated by the next period) or carry a recommendation after a
// "Recomendacion" token.
func ExtractParameter(annotation string) string {
	if idx := strings.Index(annotation, "VALOR "); idx >= 0 {
		start := idx + len("VALOR ")
		rest := annotation[start:]
		if dot := strings.Index(rest, "."); dot >= 0 {
			rest = rest[:dot]
		}
		param := strings.TrimSpace(rest)
		if corrected, ok := labelCorrections[param]; ok {
			return corrected
		}
		return param
	}

	for _, token := range []string{"Recomendacion", "recomendacion"} {
		if idx := strings.Index(annotation, token); idx >= 0 {
			return strings.TrimSpace(annotation[idx+len(token):])
		}
	}

	return UnknownParameter
}
