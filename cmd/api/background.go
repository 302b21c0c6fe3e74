package main

// background runs fn on its own goroutine, recovering panics so a failed
// email can never take the server down.
func (app *application) background(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				app.logger.Errorw("background task panicked", "error", r)
			}
		}()
		fn()
	}()
}
