package handler

import (
	"currencies-app/internal/domain/about"
	"currencies-app/internal/domain/currency"
	"currencies-app/internal/domain/subscription"
	"currencies-app/internal/domain/user"
)

type navItem struct {
	Caption string
	Href    string
	Active  bool
}

var navigation = []navItem{
	{Caption: "Home", Href: "/"},
	{Caption: "Author", Href: "/author"},
	{Caption: "Users", Href: "/users"},
	{Caption: "Rates", Href: "/currencies"},
	{Caption: "Manage currencies", Href: "/currencies/admin"},
}

func navFor(current string) []navItem {
	items := make([]navItem, len(navigation))
	copy(items, navigation)
	for i := range items {
		items[i].Active = items[i].Href == current
	}
	return items
}

// page is the data every template receives. Pages use the fields they need.
type page struct {
	Title      string
	AppName    string
	Navigation []navItem
	App        about.App

	Currencies    []*currency.Currency
	Users         []*user.User
	User          *user.User
	Subscriptions []subscription.Entry
	Available     []*currency.Currency

	RefreshError string
	Dump         string
	Message      string
}
