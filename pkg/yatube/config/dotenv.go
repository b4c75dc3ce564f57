package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// LoadDotEnvs loads the .env files following the convention
// https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use.
// Variables already present in the process environment win, and earlier files
// win over later ones.
func LoadDotEnvs(rootPath string) {
	env := os.Getenv("YATUBE_ENV")
	if env == "" {
		env = DevEnv
	}

	// .env.[runtime_env].local has highest priority, usually holds secrets
	godotenv.Load(rootPath + ".env." + env + ".local")
	if env != TestEnv {
		godotenv.Load(rootPath + ".env.local")
	}
	godotenv.Load(rootPath + ".env." + env)
	godotenv.Load(rootPath + ".env")
}
