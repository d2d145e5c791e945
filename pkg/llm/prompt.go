package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `Eres un asistente para desarrolladores Bantotal. Presenta los resultados
que recibes sin inventar datos: muestra el SQL tal cual en un bloque de
codigo, lista las advertencias, y resume los pasajes de documentacion.`

// BuildPrompt renders the structured context into the formatter prompt.
// The formatter only presents; all facts come from the engine.
func BuildPrompt(fc FormatContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Consulta del usuario: %s\n", fc.Query)
	fmt.Fprintf(&b, "Intencion detectada: %s\n", fc.Intent)
	if fc.SQL != "" {
		b.WriteString("\nSQL generado:\n```sql\n")
		b.WriteString(fc.SQL)
		b.WriteString("\n```\n")
	}
	if len(fc.Warnings) > 0 {
		b.WriteString("\nAdvertencias:\n")
		for _, w := range fc.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if len(fc.Passages) > 0 {
		b.WriteString("\nDocumentacion recuperada:\n")
		for i, p := range fc.Passages {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
	}
	return b.String()
}
