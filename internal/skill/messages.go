package skill

// Fixed replies.
const (
	MsgHelp           = "Request a Minnesota city and I'll get snow emergency info for you!"
	MsgUnknownCity    = "I don't have information for %s. Request another Minnesota city and I'll get snow emergency info for you!"
	MsgNoAddressCity  = "I couldn't find a city for your device address. Request a Minnesota city and I'll get snow emergency info for you!"
	MsgGoodbye        = "Bye!"
	MsgFallback       = "I'm sorry, I don't understand."
	MsgPermission     = "Please grant me permission to access your device address. Without this permission I cannot find locations near you!"
	MsgGenericError   = "I'm having issues, please try again later"
	MsgCitiesPrefix   = "I have snow emergency info for "
	msgPolicyOnly     = "Policy only"
	msgPostsEmergency = "Posts snow emergencies"
)
