package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/voicescribe/app"
	apperrors "github.com/kbukum/voicescribe/errors"
)

func main() {
	cfg, err := app.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicescribe: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "voicescribe: %v\n", err)
		if apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid) {
			fmt.Fprintln(os.Stderr, "voicescribe: set TELEGRAM_TOKEN and GOOGLE_APPLICATION_CREDENTIALS, or edit cmd/voicescribe/config.yml")
		}
		os.Exit(1)
	}
}
