package schedules

// BirthdayTemplateID es el marcador reservado del recordatorio anual de
// cumpleaños generado automáticamente; no pertenece al catálogo.
const BirthdayTemplateID = "pet-birthday-reminder"

// Template es un tipo de tarea reutilizable. El título de una tarea normal
// es Verb + apodo + Action; el de cumpleaños es apodo + "的生日提醒".
type Template struct {
	ID      string
	Label   string
	Verb    string
	Action  string
	IconKey string
}

// Catálogo inmutable de tipos de tarea.
var templates = []Template{
	{ID: "bath", Label: "洗澡", Verb: "带", Action: "去洗澡", IconKey: "bath"},
	{ID: "groom", Label: "美容", Verb: "带", Action: "去做美容", IconKey: "snack"},
	{ID: "vaccine", Label: "打疫苗", Verb: "带", Action: "去打疫苗", IconKey: "vaccine"},
	{ID: "clinic", Label: "就诊", Verb: "带", Action: "去就诊", IconKey: "clinic"},
	{ID: "play", Label: "出去玩", Verb: "和", Action: "一起出去玩", IconKey: "play"},
}

func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// BuildTitle regenera el título derivado de un template para un apodo dado.
// Devuelve fallback cuando el template no es conocido o falta el apodo.
func BuildTitle(templateID, petLabel, fallback string) string {
	if petLabel == "" {
		return fallback
	}
	if templateID == BirthdayTemplateID {
		return petLabel + "的生日提醒"
	}
	t, ok := TemplateByID(templateID)
	if !ok {
		return fallback
	}
	return t.Verb + petLabel + t.Action
}
