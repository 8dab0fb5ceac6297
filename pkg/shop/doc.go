// Package shop manages shop profiles and the onboarding gate.
//
// Each account owns at most one shop; its presence is what separates a
// freshly signed-up account from one that can use the dashboard. The
// onboarding status is consulted on page loads, so lookups are cached in a
// small LRU that the create path invalidates.
package shop
