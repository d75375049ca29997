package utils

// Server-side messages only; question texts and UI copy live in the frontend.

// DefaultLocale matches the language of the public survey form.
const DefaultLocale = "es"

// SupportedLocales lists the locales T has catalogs for.
var SupportedLocales = []string{"es", "en"}

var translations = map[string]map[string]string{
	"es": {
		"health.ok":                "ok",
		"health.db_down":           "Base de datos no disponible",
		"error.invalid_json":       "Cuerpo JSON inválido",
		"error.invalid_request":    "Solicitud inválida",
		"error.invalid_id":         "Identificador inválido",
		"error.missing_answers":    "Faltan respuestas requeridas",
		"error.answer_not_bool":    "Las respuestas deben ser verdadero o falso",
		"error.comment_type":       "El comentario debe ser texto",
		"error.comment_too_long":   "El comentario es demasiado largo",
		"error.invalid_creds":      "Credenciales inválidas",
		"error.unauthorized":       "No autorizado",
		"error.forbidden":          "Acceso denegado",
		"error.review_not_found":   "Respuesta no encontrada",
		"error.internal":           "Error interno del servidor",
		"error.not_found":          "Recurso no encontrado",
		"error.method_not_allowed": "Método no permitido",
		"error.too_large":          "Cuerpo de la solicitud demasiado grande",
		"review.deleted":           "Respuesta eliminada correctamente",
	},
	"en": {
		"health.ok":                "ok",
		"health.db_down":           "Database unavailable",
		"error.invalid_json":       "Invalid JSON body",
		"error.invalid_request":    "Invalid request",
		"error.invalid_id":         "Invalid id",
		"error.missing_answers":    "Missing required answers",
		"error.answer_not_bool":    "Answers must be true or false",
		"error.comment_type":       "Comment must be a string",
		"error.comment_too_long":   "Comment is too long",
		"error.invalid_creds":      "Invalid credentials",
		"error.unauthorized":       "Unauthorized",
		"error.forbidden":          "Forbidden",
		"error.review_not_found":   "Review not found",
		"error.internal":           "Internal server error",
		"error.not_found":          "Not found",
		"error.method_not_allowed": "Method not allowed",
		"error.too_large":          "Request body too large",
		"review.deleted":           "Review deleted successfully",
	},
}

// T returns the translated string for key in locale, falling back to the
// default locale and finally to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}
