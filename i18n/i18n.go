// Package i18n translates error codes for API responses. French is the default.
package i18n

import "strings"

const DefaultLang = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"required":                 "Requis",
		"too_short":                "Trop court",
		"too_long":                 "Trop long",
		"invalid_email":            "Adresse e-mail invalide",
		"must_not_be_negative":     "Ne doit pas être négatif",
		"must_be_positive":         "Doit être positif",
		"invalid_choice":           "Valeur non autorisée",
		"invalid_body":             "Requête invalide",
		"invalid_date":             "Date invalide",
		"unauthenticated":          "Authentification requise",
		"invalid_credentials":      "Identifiants invalides",
		"forbidden":                "Accès refusé",
		"empty_cart":               "Le panier est vide",
		"missing_customer_name":    "Le nom du client est requis",
		"product_not_found":        "Produit introuvable",
		"invalid_status":           "Statut de commande invalide",
		"order_not_found":          "Commande introuvable",
		"user_not_found":           "Utilisateur introuvable",
		"ticket_generation_failed": "Impossible de générer un numéro de ticket",
		"email_taken":              "Cette adresse e-mail est déjà utilisée",
		"invalid_reset_token":      "Lien de réinitialisation invalide ou expiré",
		"validation_failed":        "Données invalides",
		"storage_error":            "Erreur interne",
	},
	"en": {
		"required":                 "Required",
		"too_short":                "Too short",
		"too_long":                 "Too long",
		"invalid_email":            "Invalid email address",
		"must_not_be_negative":     "Must not be negative",
		"must_be_positive":         "Must be positive",
		"invalid_choice":           "Value not allowed",
		"invalid_body":             "Invalid request",
		"invalid_date":             "Invalid date",
		"unauthenticated":          "Authentication required",
		"invalid_credentials":      "Invalid credentials",
		"forbidden":                "Forbidden",
		"empty_cart":               "The cart is empty",
		"missing_customer_name":    "Customer name is required",
		"product_not_found":        "Product not found",
		"invalid_status":           "Invalid order status",
		"order_not_found":          "Order not found",
		"user_not_found":           "User not found",
		"ticket_generation_failed": "Could not generate a ticket number",
		"email_taken":              "This email address is already in use",
		"invalid_reset_token":      "Reset link is invalid or expired",
		"validation_failed":        "Invalid data",
		"storage_error":            "Internal error",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if _, ok := messages[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// T returns the message for code, falling back to French and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// TranslateAll localizes every value of a field→code map.
func TranslateAll(lang string, codes map[string]string) map[string]string {
	if len(codes) == 0 {
		return nil
	}
	out := make(map[string]string, len(codes))
	for field, code := range codes {
		out[field] = T(lang, code)
	}
	return out
}
