package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/mathemmita/internal/rewards"
)

const helpText = `Comandos:
/nuevo - un problema nuevo
/truco - una pista para el problema
/solucion - ver la respuesta
/puntos - tus puntos y premios
/problema 7 x 8 - practicar un problema concreto
/premios helado | cine | parque - elegir premios`

func problemKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Truco", actionTrick),
			tgbotapi.NewInlineKeyboardButtonData("👀 Solución", actionReveal),
		),
	)
}

func nextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Truco", actionTrick),
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Siguiente", actionNext),
		),
	)
}

func pointsText(bal rewards.Balance, prizes rewards.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⭐ Hoy: %d puntos\n🏆 Total: %d puntos\n\n", bal.Today, bal.Total)
	for _, m := range rewards.Milestones() {
		mark := "⬜"
		if bal.Today >= m.Points {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %d: %s\n", mark, m.Points, prizes.Label(m))
	}
	return strings.TrimRight(b.String(), "\n")
}
