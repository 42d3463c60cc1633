package commands

import (
	"strconv"
	"strings"
)

const callbackDone = "Обработано"

// handleCallback routes inline-button presses. The callback is answered exactly
// once, also when the handler fails, so the client stops its spinner.
func (d *Dispatcher) handleCallback(r *Request) (res Result, err error) {
	answer, alert := callbackDone, false
	defer func() {
		if ansErr := d.s.GetGateway().AnswerCallback(r.ctx, r.t.CallbackID, answer, alert); ansErr != nil && err == nil {
			err = ansErr
		}
	}()

	action, params := r.t.CallbackAction()
	switch action {
	case "":
		answer = "Неизвестная кнопка"
		return Result{Message: answer}, nil

	case "buy_prefix":
		id, parseErr := strconv.ParseInt(strings.Join(params, ":"), 10, 64)
		if parseErr != nil {
			answer = r.T("Префикс не найден")
			return Result{Message: answer}, nil
		}
		msg, bought, buyErr := d.buyPrefix(r, id)
		if buyErr != nil {
			return Result{}, buyErr
		}
		answer, alert = msg, !bought
		return Result{Success: bought, Message: msg}, nil

	case "set_prefix":
		prefix := strings.Join(params, ":")
		if err := r.store().SetPrefix(r.ctx, r.ChatID(), r.Actor().ID, prefix); err != nil {
			return Result{}, err
		}
		answer = "Префикс установлен: " + prefix
		return Result{Success: true, Message: answer}, nil

	case "menu":
		section := strings.Join(params, ":")
		msg, ok, menuErr := d.menuText(r, section)
		if menuErr != nil {
			return Result{}, menuErr
		}
		if !ok {
			return Result{Message: callbackDone}, nil
		}
		if err := d.s.GetGateway().EditText(r.ctx, r.ChatID(), r.t.MessageID, msg, nil); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Message: msg}, nil
	}
	return Result{Success: true, Message: callbackDone}, nil
}
