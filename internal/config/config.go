package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	OpenAIKey     string
	OpenAIModelID string

	ElevenLabsKey     string
	ElevenLabsVoiceID string

	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	TwilioAccountSID string
	TwilioAPIKey     string
	TwilioAPISecret  string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded; using process environment")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":5001"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - assistant replies will not work")
	}
	openAIModel := os.Getenv("OPENAI_MODEL_ID")
	if openAIModel == "" {
		openAIModel = "gpt-4o-mini"
	}

	elevenKey := os.Getenv("ELEVENLABS_API_KEY")
	if elevenKey == "" {
		log.Println("Warning: ELEVENLABS_API_KEY not set - speech synthesis will not work")
	}
	voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
	if voiceID == "" {
		log.Println("Warning: ELEVENLABS_VOICE_ID not set - set a concrete voice ID from your ElevenLabs dashboard")
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseAnon := os.Getenv("SUPABASE_ANON_KEY")
	supabaseService := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if supabaseURL == "" || supabaseService == "" {
		log.Println("Warning: SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY not set - tasks will be kept in memory only")
	}
	if supabaseAnon == "" {
		log.Println("Warning: SUPABASE_ANON_KEY not set - bearer tokens cannot be verified")
	}

	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioKey := os.Getenv("TWILIO_API_KEY")
	twilioSecret := os.Getenv("TWILIO_API_SECRET")
	if twilioSID == "" || twilioKey == "" || twilioSecret == "" {
		log.Println("Warning: Twilio credentials not set - meeting tokens will not work")
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:        addr,
		OpenAIKey:          openAIKey,
		OpenAIModelID:      openAIModel,
		ElevenLabsKey:      elevenKey,
		ElevenLabsVoiceID:  voiceID,
		SupabaseURL:        supabaseURL,
		SupabaseAnonKey:    supabaseAnon,
		SupabaseServiceKey: supabaseService,
		TwilioAccountSID:   twilioSID,
		TwilioAPIKey:       twilioKey,
		TwilioAPISecret:    twilioSecret,
	}
}
