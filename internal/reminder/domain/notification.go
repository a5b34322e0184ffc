package domain

// Notification is the localized push content for one reminder.
type Notification struct {
	Title string
	Body  string
	Route string
}

var consumptionNotification = Notification{
	Title: "¡No olvides tu registro de hoy!",
	Body:  "Abre la app y marca tu día sin consumo 💪",
	Route: "/registro",
}

var moodNotifications = map[Slot]Notification{
	SlotMorning: {
		Title: "¿Cómo amaneciste?",
		Body:  "Registra tu estado de ánimo de la mañana ☀️",
		Route: "/mood",
	},
	SlotAfternoon: {
		Title: "¿Qué tal va tu tarde?",
		Body:  "Tómate un minuto para registrar tu ánimo de la tarde 🌤️",
		Route: "/mood",
	},
	SlotEvening: {
		Title: "¿Cómo terminó tu día?",
		Body:  "Registra tu estado de ánimo de la noche 🌙",
		Route: "/mood",
	},
}

// Compose returns the notification for a validated request.
func Compose(req Request) Notification {
	if req.Kind == KindMood {
		return moodNotifications[req.Slot]
	}
	return consumptionNotification
}

// Data builds the FCM data payload that lets the app open the right screen.
func (n Notification) Data(req Request) map[string]string {
	data := map[string]string{
		"type":  string(req.Kind) + "_reminder",
		"kind":  string(req.Kind),
		"route": n.Route,
	}
	if req.Kind == KindMood {
		data["slot"] = string(req.Slot)
	}
	return data
}
