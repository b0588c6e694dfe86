// coupons_test.go

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCouponCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"save10", "SAVE10"},
		{"  flash50  ", "FLASH50"},
		{"WELCOME", "WELCOME"},
		{"MiXeD20", "MIXED20"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeCouponCode(tc.in), "input %q", tc.in)
	}
}

func TestCouponDiscountTypes(t *testing.T) {
	assert.True(t, couponDiscountTypes["percentage"])
	assert.True(t, couponDiscountTypes["fixed"])
	assert.False(t, couponDiscountTypes["bogo"])
	assert.False(t, couponDiscountTypes[""])
}
