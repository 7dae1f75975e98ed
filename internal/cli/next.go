package cli

import "fmt"

type NextCmd struct{}

func (c *NextCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetAlarmSettings()
	if err != nil {
		return err
	}

	text, ok := nextAlarmText(ctx)
	if !ok {
		fmt.Println("No wake time configured")
		return nil
	}

	fmt.Println(text)
	if !settings.IsArmed {
		fmt.Println("(alarm is disarmed; run 'lucidlog arm' to enable it)")
	}
	return nil
}
