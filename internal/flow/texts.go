package flow

// User-visible texts and button identifiers. The callback uniques are part of
// the deployed chat surface and must stay byte-for-byte stable.
const (
	CallbackAreaPrefix = "area_"
	CallbackAreaNorth  = "area_North"
	CallbackAreaCentre = "area_Centre"
	CallbackAreaSouth  = "area_South"
	CallbackLike       = "like"
	CallbackDislike    = "dislike"
	CallbackShowMore   = "show_more"
)

const (
	textWelcome = "Welcome to Saeed, Raz and Yara's TravelBot! 🌍\nLet’s plan your next trip.\nChoose a travel area:"

	textAreaChosen = "Great! You chose the %s 🌄\nLooking for a great trail for you..."

	textNoAreaSelected = "Please select a travel area first using /start."
	textNoAreaFeedback = "Please start by selecting an area using /start."
	textNoSession      = "Please start with /start"

	textExhausted     = "✅ You’ve seen all trip suggestions in this area."
	textNoSuggestions = "No more suggestions available."

	textTripSaved     = "✅ %s saved to your trip history!"
	textTripDuplicate = "ℹ️ %s is already in your trip history."

	textLikedTrip = "📍 %s\n\nמזג האוויר היום: %s\n\n%s"

	textHistoryEmpty  = "📭 No saved trips yet."
	textHistoryHeader = "🗺️ Saved Trips:"
	textHistoryLine   = "%d. %s – %s – saved on %s"

	textClearPrompt    = "⚠️ Are you sure you want to delete your entire trip history?"
	textClearConfirmed = "✅ All saved trips have been cleared."
	textClearCancelled = "❎ Trip history was not deleted."

	textNoDescription = "No additional description available."

	textPresentation = "Here are some trip options in the %s:\n\n%s\n%s\n%s\n%s"

	textWeatherUnavailable = "Temperature info not available"
	textWeatherAPIError    = "Weather API error: %s"
	textTempUnknown        = "N/A"
)

const (
	btnLike     = "👍"
	btnDislike  = "👎"
	btnShowMore = "Show More Adventures"
	btnYes      = "Yes"
	btnNo       = "No"
)

const historyDateLayout = "2006-01-02 15:04"
