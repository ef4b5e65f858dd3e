package usecase

// Spoken phrase templates. The skill speaks one language; localization is a
// platform concern, not something the dialog switches on.

const (
	msgGreeting = "Welcome to cloth check. "

	msgAskPostalCode         = "Please tell me the first three digits of your postal code."
	msgAskPostalCodeReprompt = "Tell me the first three digits of your postal code."
	msgAskPostalCodeError    = "I need exactly three digits. Please say the first three digits of your postal code."

	// Verbatim echo of the three digits, then ask for the rest.
	msgAskPostalCodeRestFormat   = "I heard %s %s %s. Now tell me the remaining four digits."
	msgAskPostalCodeRestReprompt = "Tell me the remaining four digits of your postal code."
	msgAskPostalCodeRestError    = "I need exactly four digits. Please say the last four digits of your postal code."

	msgPostalCodeSavedFormat = "I registered postal code %s. "

	msgAskRatingFormat   = "%sHow does today's temperature feel? Say hot, cold, or just right."
	msgAskRatingReprompt = "How does the temperature feel? Say hot, cold, or just right."

	// Goal responses: temperature, rating label, image-availability note.
	msgAlreadyRatedFormat = "You said %d degrees felt %s.%s I sent the details to your chat. Goodbye."
	msgRatingSavedFormat  = "Got it, %d degrees feels %s.%s I sent the details to your chat. Goodbye."
	msgImageNote          = " There is a photo of what you wore."
	msgNoImageNote        = ""

	msgWrongPhaseWantRest  = "I already have the first three digits. Please tell me the remaining four digits."
	msgWrongPhaseWantFirst = "Let's start with the first three digits of your postal code."

	msgGenericError         = "Sorry, I didn't catch that."
	msgGenericErrorReprompt = "Could you say that again?"

	msgGoodbye = "Goodbye."

	msgHelpPostalCodeFirst = "I'm waiting for the first three digits of your postal code. Say them one digit at a time."
	msgHelpPostalCodeRest  = "I'm waiting for the last four digits of your postal code. Say them one digit at a time."
	msgHelpRating          = "Tell me how the temperature feels: hot, cold, or just right."
	msgHelpGeneral         = "Cloth check remembers how each temperature felt to you. Launch the skill and follow the prompts. Goodbye."
)
