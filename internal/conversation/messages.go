package conversation

// Canned Spanish reply templates. Placeholders are filled with fmt.Sprintf.
const (
	msgWelcome = "👋 ¡Hola! Soy **Bianca** 😊, tu asistente de salud de GoMind.\n\n" +
		"Ingresa tu **correo electrónico** para enviarte un código de verificación y así confirmar tu identidad"

	msgHealthyResultsIntro = "¡Excelente noticia, tus valores están todos dentro del rango saludable:\n\n%s\n\n" +
		"Estos resultados indican que estás llevando un estilo de vida saludable. ¡Felicitaciones! Sigue así con tus buenos hábitos de alimentación y ejercicio."

	msgUnhealthyResultsIntro = "He revisado tus valores y me gustaría comentarte lo que veo:\n\n%s\n\n" +
		"Aunque no están muy elevados, sería recomendable que un médico los revise más a fondo."

	msgDisclaimer = "\n\nLos resultados obtenidos mediante IA se basan exclusivamente en los indicadores analizados y deben entenderse como una referencia de apoyo.\n" +
		"La interpretación final y la toma de decisiones corresponden siempre al criterio profesional de los colaboradores."

	msgAppointmentQuestion = "¿Te gustaría que te ayude a agendar una cita para que puedas discutir estos resultados con un profesional?"

	msgAppointmentSuccess = "¡Excelente! Tu cita quedó confirmada para el %s a las %s en %s.\n\n" +
		"La cita ha sido registrada correctamente en nuestro sistema. Te enviaremos un recordatorio antes de la hora programada.\n\n"

	msgAppointmentError = "Lo siento, hubo un problema al agendar tu cita (Error %v). Por favor, intenta nuevamente en unos minutos o contacta a nuestro soporte técnico.\n\n" +
		"¿Hay algo más en lo que pueda ayudarte mientras tanto?"

	msgConnectionError = "Lo siento, hubo un problema de conexión al procesar tu cita. Por favor, verifica tu conexión a internet e intenta nuevamente, o contacta a nuestro soporte técnico.\n\n" +
		"¿Hay algo más en lo que pueda ayudarte mientras tanto?"

	msgClinicUnavailable = "Lo siento, no hay clínicas disponibles en este momento. ¿Te gustaría intentarlo más tarde o tienes alguna otra consulta?"

	msgClinicError = "Error obteniendo clínicas disponibles: %v. ¿Te gustaría intentarlo más tarde?"

	msgClinicNotRecognized = "No reconocí esa clínica. ¿Puedes elegir una de las opciones disponibles?"

	msgDayNotRecognized = "No reconocí ese día. ¿Puedes elegir uno de los disponibles usando el número (1, 2, 3) o el nombre del día?"

	msgAppointmentDeclined = "Entiendo, no confirmo la cita. ¿Te gustaría reagendar para otro día u horario, o hay algo más en lo que pueda ayudarte?"

	msgAppointmentGeneralDeclined = "Entiendo. Si cambias de opinión y quieres agendar una cita más tarde, solo dímelo. ¿Hay algo más en lo que pueda ayudarte?"

	msgLoginSuccessMenu = "¡Bienvenido/a, %s!\n\n¿Cómo te ayudamos hoy?\n\n- Agendar mi cita\n- Revisa mi examen\n\nEscribe la opción que prefieras."

	msgProductsMenu = "Gracias, voy a proceder a ayudarte con tu agendamiento, por favor selecciona alguno de los productos disponibles\n\n%s\n¿Cuál producto te interesa? Escribe el nombre del producto."

	msgProductSelected = "Perfecto ✅ Para agendar tu **%s**, contamos con los siguientes centros médicos:"

	msgInvalidMenuOption = "No entendí tu selección. Por favor, escribe:\n- 'Agendar mi cita' para agendar una cita\n- 'Revisa mi examen' para análisis médico"

	msgInvalidProductOption = "No reconocí ese producto. Por favor, escribe el nombre de uno de los productos disponibles."

	msgVerificationCodeSent = "🔒 Para confirmar tu identidad, te envié un código de verificación a tu correo.\nEscríbelo aquí para continuar"

	msgCodeAuthenticationSuccess = "🎉 ¡Perfecto! Ya verifiqué tu identidad."

	msgInvalidCode = "Código inválido. Por favor, verifica el código e intenta nuevamente:"

	msgCodeError = "Error procesando el código. Por favor, intenta nuevamente:"

	msgInvalidEmail = "El dato ingresado no parece ser válido. Por favor, verifica la información."

	msgConversationEnded = "¡Que tengas un excelente día! Si necesitas algo más, estaré aquí para ayudarte."

	msgInvalidJSON = "El formato JSON no es válido. Por favor, comparte tus resultados en formato JSON válido, ejemplo: {\"Glicemia Basal\": 90, \"Hemoglobina\": 13}"

	msgProcessingFallback = "Lo siento, no pude procesar tu mensaje."
)
