// Package ui provides styled console output for the Orbit Chat server.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	titleText   = color.New(color.FgHiCyan, color.Bold)
)

// PrintBanner displays the startup banner.
func PrintBanner(version string) {
	fmt.Println()
	titleText.Println("  ◉ ORBIT CHAT")
	mutedText.Printf("    multi-provider AI chat backend %s\n", version)
	fmt.Println()
}

// PrintStartup shows the listening address and registered endpoints.
func PrintStartup(addr, provider, driver string) {
	successText.Printf("🚀 Orbit Chat API is running at http://%s\n", addr)
	infoText.Print("   provider: ")
	accentText.Println(provider)
	infoText.Print("   store:    ")
	accentText.Println(driver)
	fmt.Println("   Endpoints:")
	fmt.Println("   • POST /api/auth/register            - Create account")
	fmt.Println("   • POST /api/auth/login               - Log in")
	fmt.Println("   • GET  /api/chat/conversations       - List conversations")
	fmt.Println("   • POST /api/chat/messages            - Send a chat message")
	fmt.Println("   • GET  /api/notifications            - List notifications")
	fmt.Println("   • GET  /api/health                   - Health check")
	fmt.Println()
}

// PrintMockWarning flags that canned responses are active.
func PrintMockWarning(selected string) {
	warningText.Printf("⚠️  provider %q has no API key, serving mock responses\n", selected)
}

// PrintShutdown shows the graceful shutdown notices.
func PrintShutdown() {
	fmt.Println("\n⏳ Shutting down gracefully...")
}

// PrintStopped confirms a clean exit.
func PrintStopped() {
	successText.Println("✅ Server stopped. Goodbye!")
}
