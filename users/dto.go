// Package users covers accounts and everything attached to them: profiles,
// avatars, password changes, and the follow graph with its subscriptions
// feed.
package users

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string `json:"email" example:"user@example.com"`
	Username  string `json:"username" example:"chef_ivan"`
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name" example:"Petrov"`
	Password  string `json:"password" example:"strongpassword123"`
}

// RegisterResponse is returned with 201 on successful registration. The
// password never appears in responses.
type RegisterResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserResponse is the canonical user read model used everywhere a user
// appears: profile pages, recipe authors, subscription entries.
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
	Avatar       string `json:"avatar"`
}

// RecipeShort is the compact recipe representation used in subscription
// previews and toggle responses.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse annotates an author with a recipe preview and the
// author's total recipe count.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}

// SetPasswordRequest changes the requester's password.
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// AvatarRequest carries a base64 data-URI image.
type AvatarRequest struct {
	Avatar string `json:"avatar" example:"data:image/png;base64,iVBORw0KGgo..."`
}

// AvatarResponse returns the stored avatar's public URL.
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}
