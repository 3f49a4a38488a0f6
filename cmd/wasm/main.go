//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/pinboard/internal/editor"
	"github.com/inamate/pinboard/internal/scene"
)

var ed *editor.Editor

func main() {
	var err error
	ed, err = editor.New()
	if err != nil {
		js.Global().Get("console").Call("error", "pinboard: "+err.Error())
		return
	}

	// Create the editor API object
	pinboardEditor := js.Global().Get("Object").New()

	// --- Commands (frontend → editor) ---
	pinboardEditor.Set("loadScene", js.FuncOf(loadScene))
	pinboardEditor.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	pinboardEditor.Set("apply", js.FuncOf(apply))
	pinboardEditor.Set("addBitmap", js.FuncOf(addBitmap))
	pinboardEditor.Set("beginGesture", js.FuncOf(beginGesture))
	pinboardEditor.Set("previewMove", js.FuncOf(previewMove))
	pinboardEditor.Set("previewTransform", js.FuncOf(previewTransform))
	pinboardEditor.Set("commitGesture", js.FuncOf(commitGesture))
	pinboardEditor.Set("cancelGesture", js.FuncOf(cancelGesture))
	pinboardEditor.Set("subscribe", js.FuncOf(subscribe))

	// --- Queries (frontend ← editor) ---
	pinboardEditor.Set("render", js.FuncOf(render))
	pinboardEditor.Set("hitTest", js.FuncOf(hitTest))
	pinboardEditor.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	pinboardEditor.Set("getSnapshot", js.FuncOf(getSnapshot))
	pinboardEditor.Set("getDocument", js.FuncOf(getDocument))
	pinboardEditor.Set("getBitmap", js.FuncOf(getBitmap))

	// Register on global scope
	js.Global().Set("pinboardEditor", pinboardEditor)

	// Signal that WASM is ready
	js.Global().Set("pinboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func fail(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing scene JSON")
	}
	if err := ed.LoadScene([]byte(args[0].String())); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func loadSampleScene(this js.Value, args []js.Value) any {
	if err := ed.LoadSampleScene(); err != nil {
		return fail(err.Error())
	}
	return ok()
}

// apply takes an operation as JSON and returns its result as JSON, or an
// object with an error field.
func apply(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing operation JSON")
	}
	out, err := ed.Apply([]byte(args[0].String()))
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(string(out))
}

// addBitmap takes a Uint8Array of encoded image bytes.
func addBitmap(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return fail("missing image bytes")
	}
	data := make([]byte, args[0].Length())
	js.CopyBytesToGo(data, args[0])
	info, err := ed.AddBitmap(data)
	if err != nil {
		return fail(err.Error())
	}
	return toJSON(info)
}

func beginGesture(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return fail("missing image ids")
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	if err := ed.BeginGesture(ids...); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func previewMove(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	if err := ed.PreviewMove(args[0].Float(), args[1].Float()); err != nil {
		return fail(err.Error())
	}
	return nil
}

func previewTransform(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	var t scene.Transform
	if err := json.Unmarshal([]byte(args[1].String()), &t); err != nil {
		return fail(err.Error())
	}
	if err := ed.PreviewTransform(args[0].String(), t); err != nil {
		return fail(err.Error())
	}
	return nil
}

func commitGesture(this js.Value, args []js.Value) any {
	out, err := ed.CommitGesture()
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]any{"outcome": out.String()})
}

func cancelGesture(this js.Value, args []js.Value) any {
	ed.CancelGesture()
	return nil
}

// subscribe calls back with the snapshot JSON after every change and returns
// an unsubscribe function.
func subscribe(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return fail("missing callback")
	}
	callback := args[0]
	unsubscribe := ed.Store().Subscribe(func(snap scene.Snapshot) {
		data, err := json.Marshal(snap)
		if err != nil {
			return
		}
		callback.Invoke(string(data))
	})

	var release js.Func
	release = js.FuncOf(func(this js.Value, args []js.Value) any {
		unsubscribe()
		release.Release()
		return nil
	})
	return release
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(ed.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	hit, _ := ed.HitTest(args[0].Float(), args[1].Float())
	return toJSON(hit)
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return toJSON(ed.SelectionBounds())
}

func getSnapshot(this js.Value, args []js.Value) any {
	s, err := ed.SnapshotJSON()
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(s)
}

func getDocument(this js.Value, args []js.Value) any {
	s, err := ed.DocumentJSON()
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(s)
}

// getBitmap returns a stored bitmap as PNG bytes in a Uint8Array.
func getBitmap(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing bitmap id")
	}
	data, err := ed.BitmapPNG(args[0].String())
	if err != nil {
		return fail(err.Error())
	}
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}
