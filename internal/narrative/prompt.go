package narrative

import "fmt"

const systemPrompt = "אתה כותב תקצירים קצרים ומעניינים בעברית על אתרי טיול בישראל, בפורמט של בולטים עם אימוג'ים, בטקסט שמתאים לטלגרם."

// tripPrompt renders the user prompt for a liked trip.
func tripPrompt(title, place, temp string) string {
	return fmt.Sprintf(`כתוב תקציר קצר ומעניין בעברית על אתר הטיול הבא:

כותרת: %s
מיקום: %s
טמפרטורה: %s

השתמש במידע הזה וכתוב תיאור ב-5 שורות לכל היותר, בפורמט של בולטים עם אימוג'ים.
כלול בקצרה:
- קצת היסטוריה על המקום
- מה אפשר לראות ולעשות שם (רק הדברים הכי חשובים)
- למה כדאי לבקר בו
- שעות פתיחה אם יש
- אל תשכח להחזיר את הפלט בפורמט טקסט שמתאים לטלגרם.`, title, place, temp)
}
