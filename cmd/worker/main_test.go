package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/orderdesk/internal/app"
	_ "github.com/odyssey-erp/orderdesk/testing"
)

func TestMainReturnsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	main()
}
