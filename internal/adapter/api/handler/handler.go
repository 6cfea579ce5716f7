package handler

import (
	"pasariklan/internal/usecase"
)

var (
	authHandler         *AuthHandler
	userHandler         *UserHandler
	listingHandler      *ListingHandler
	favoriteHandler     *FavoriteHandler
	conversationHandler *ConversationHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	listingUseCase *usecase.ListingUseCase,
	favoriteUseCase *usecase.FavoriteUseCase,
	conversationUseCase *usecase.ConversationUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	favoriteHandler = NewFavoriteHandler(favoriteUseCase)
	conversationHandler = NewConversationHandler(conversationUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetConversationHandler() *ConversationHandler {
	return conversationHandler
}
