// messages_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDCommutative(t *testing.T) {
	a := "64a000000000000000000001"
	b := "64a000000000000000000002"

	assert.Equal(t, conversationID(a, b, ""), conversationID(b, a, ""))
	assert.Equal(t, conversationID(a, b, "prod1"), conversationID(b, a, "prod1"))
}

func TestConversationIDDerivation(t *testing.T) {
	a := "64a000000000000000000002"
	b := "64a000000000000000000001"

	// Lower id always comes first.
	assert.Equal(t, b+"-"+a, conversationID(a, b, ""))
	assert.Equal(t, b+"-"+a+"-prod1", conversationID(a, b, "prod1"))
}

func TestConversationIDProductScoping(t *testing.T) {
	a := "64a000000000000000000001"
	b := "64a000000000000000000002"

	// The same pair talking about different products gets distinct threads.
	assert.NotEqual(t, conversationID(a, b, "p1"), conversationID(a, b, "p2"))
	assert.NotEqual(t, conversationID(a, b, "p1"), conversationID(a, b, ""))
}
