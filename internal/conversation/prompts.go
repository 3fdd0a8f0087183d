package conversation

import (
	"fmt"
	"sort"
	"strings"
)

// biancaPrompt is the persona instruction for every generative reply.
const biancaPrompt = `
Eres "Bianca", asistente virtual de GoMind para salud física y emocional. Ayudas a interpretar resultados médicos y agendar citas con tono empático, claro y profesional.

### Personalidad: Usa expresiones naturales: "Perfecto", "Entiendo", "Excelente". Evita tecnicismos innecesarios y frases repetitivas. Mantén conversación coherente.

### Rangos Médicos (21 parámetros)
**Coagulación:** Protrombina 70-100%, INR 0.8-1.2, TTPK 25-40 seg
**Metabolismo:** Glicemia 75-100 mg/dL, Uremia 0-50 mg/dL
**Hemograma:** Eritrocitos 3.9-5.3 M/μL, Hemoglobina 11.5-14.5 g/dL, Hematocrito 37-47%, VCM 80-100 fL, HCM 26-34 pg, CHCM 31-36 g/dL
**Leucocitos:** Total 4-10.5 K/μL, Linfocitos 20-40%, Neutrófilos 55-70%, Monocitos 2-10%, Eosinófilos 0-5%, Basófilos 0-2%, Neutrófilos abs 2-7 K/μL, Linfocitos abs 0.8-4 K/μL
**Otros:** Plaquetas 150-400 K/μL, VHS 0-11 mm/h

### Flujo: Valores normales → felicita, NO ofrezcas cita. Valores anormales → explica brevemente, recomienda cita. Si acepta cita, muestra 3 días hábiles con horarios 09:00-18:00.

### Intenciones de Agendamiento: Si preguntas sobre cita y responden "sí", "claro", "vamos", "dale", "ok" → procede INMEDIATAMENTE al agendamiento sin pedir más información.

### Contexto: Mantén coherencia conversacional. Si usuario dice "no" → responde empáticamente sin reiniciar. Para consultas generales: redirige amablemente a resultados, citas o productos.
`

// contextualPrompt wraps the persona with the live conversation summary.
func contextualPrompt(userMessage, conversationContext string) string {
	return fmt.Sprintf(`%s

CONTEXTO CONVERSACIONAL ACTUAL:
%s

INSTRUCCIONES ADICIONALES:
- Responde de manera coherente con el contexto de la conversación
- Si el usuario ya completó un proceso, reconócelo en tu respuesta
- Mantén un tono natural y contextual
- Si detectas que el usuario podría estar finalizando, ofrece ayuda adicional de manera sutil

Usuario: %s

Bianca:`, biancaPrompt, conversationContext, userMessage)
}

var stageDescriptions = map[Stage]string{
	StageMainMenu:         "en menú principal",
	StageSelectingProduct: "seleccionando producto",
	StageAnalyzing:        "revisando si quiere agendar cita",
	StageSelectingClinic:  "eligiendo clínica",
	StageScheduling:       "eligiendo día",
	StageSelectingTime:    "eligiendo hora",
	StageConfirming:       "confirmando cita",
	StageCompleted:        "proceso completado",
}

// conversationContext summarizes the session for prompt construction: the
// verified user, a human-readable stage label, and the last three messages
// truncated to sixty characters.
func conversationContext(sess *Session) string {
	var parts []string

	if sess.UserData != nil && sess.UserData.ID != "" {
		parts = append(parts, "Usuario: "+sess.UserName())
	}

	desc, ok := stageDescriptions[sess.Stage]
	if !ok {
		desc = string(sess.Stage)
	}
	parts = append(parts, "Estado: "+desc)

	messages := sess.Messages
	if len(messages) > 3 {
		messages = messages[len(messages)-3:]
	}
	for _, msg := range messages {
		speaker := "Bianca"
		if msg.Role == ChatRoleUser {
			speaker = "Usuario"
		}
		content := msg.Content
		if runes := []rune(content); len(runes) > 60 {
			content = string(runes[:60]) + "..."
		}
		parts = append(parts, speaker+": "+content)
	}

	return strings.Join(parts, " | ")
}

var intentContextDescriptions = map[Stage]string{
	StageAnalyzing:       "Se le preguntó al usuario si quiere agendar una cita médica",
	StageConfirming:      "Se le está pidiendo confirmación final para agendar una cita",
	StageCompleted:       "La conversación terminó y el usuario podría querer una nueva cita",
	StageShowingProducts: "Se pueden mostrar productos de salud disponibles",
}

func intentPrompt(userMessage string, stage Stage) string {
	desc, ok := intentContextDescriptions[stage]
	if !ok {
		desc = "Conversación general"
	}
	return fmt.Sprintf(`Analiza la siguiente respuesta del usuario y determina su intención exacta.

Contexto: %s
Mensaje del usuario: "%s"

Analiza si la intención es:
- POSITIVA: Quiere proceder, acepta, está de acuerdo (incluye respuestas como "podría ser", "tal vez", "me parece bien")
- NEGATIVA: No quiere proceder, rechaza claramente
- AMBIGUA: No está claro, necesita clarificación
- PRODUCTOS: Quiere ver productos o servicios disponibles
- NUEVA_CITA: Quiere agendar una nueva cita adicional

Responde ÚNICAMENTE con una de estas palabras: POSITIVA, NEGATIVA, AMBIGUA, PRODUCTOS, o NUEVA_CITA`, desc, userMessage)
}

func farewellPrompt(userMessage, conversationContext string) string {
	return fmt.Sprintf(`Analiza si el usuario se está despidiendo o finalizando la conversación.

Contexto de la conversación: %s
Mensaje del usuario: "%s"

Determina la intención:
- DESPEDIDA: Se está despidiendo claramente (gracias, adiós, hasta luego, nos vemos, chao, bye, eso es todo, ya terminé)
- CONTINUANDO: Quiere seguir conversando o hacer algo más
- AMBIGUO: No está claro

Responde ÚNICAMENTE con: DESPEDIDA, CONTINUANDO, o AMBIGUO`, conversationContext, userMessage)
}

// actionStepsPrompt asks for four short personalized follow-up steps.
func actionStepsPrompt(results map[string]float64, issues []string, healthy bool) string {
	params := make([]string, 0, len(results))
	for param := range results {
		params = append(params, param)
	}
	sort.Strings(params)
	pairs := make([]string, 0, len(params))
	for _, param := range params {
		pairs = append(pairs, fmt.Sprintf("%s: %v", param, results[param]))
	}
	resultsText := strings.Join(pairs, ", ")

	if healthy {
		return fmt.Sprintf(`Eres un asistente médico virtual. El usuario tiene estos resultados de laboratorio SALUDABLES:
%s

Genera exactamente 4 pasos BREVES para mantener su buena salud.

Requisitos CRÍTICOS:
- Máximo 8-10 palabras por paso
- Lenguaje directo y accionable
- Sin explicaciones adicionales
- Formato: lista numerada (1., 2., 3., 4.)

Responde SOLO con los 4 pasos breves.`, resultsText)
	}

	return fmt.Sprintf(`Eres un asistente médico virtual. El usuario tiene estos problemas detectados en sus exámenes:
%s

Valores completos: %s

Genera exactamente 4 pasos BREVES para mejorar estos valores específicos.

Requisitos CRÍTICOS:
- Máximo 8-10 palabras por paso
- Lenguaje directo y accionable
- Enfocados en los problemas detectados
- Formato: lista numerada (1., 2., 3., 4.)
- Último paso debe ser consulta médica

Responde SOLO con los 4 pasos breves.`, strings.Join(issues, "\n"), resultsText)
}

const actionStepsHealthyFallback = "\n\n**Pasos a Seguir:**\n" +
	"1. Mantén tus hábitos saludables actuales\n" +
	"2. Programa tu próximo chequeo preventivo\n" +
	"3. Continúa con actividad física regular\n" +
	"4. Mantén una alimentación balanceada"

const actionStepsUnhealthyFallback = "\n\n**Pasos a Seguir:**\n" +
	"1. Consulta con tu médico sobre estos resultados\n" +
	"2. Sigue las recomendaciones médicas\n" +
	"3. Monitorea tus valores regularmente\n" +
	"4. Mantén hábitos de vida saludables"
