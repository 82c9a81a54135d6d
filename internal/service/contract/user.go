package contract

import "context"

type userIDKey struct{}

// WithUserID 요청을 수행하는 사용자의 ID를 컨텍스트에 담습니다.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext 컨텍스트에 담긴 사용자 ID를 반환합니다.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int)
	return userID, ok && userID > 0
}
