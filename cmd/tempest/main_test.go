package main

import (
	"testing"

	"github.com/tempest-stays/tempest/internal/app"
	_ "github.com/tempest-stays/tempest/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatal("expected test mode to be enabled by guard")
	}
	main()
}
