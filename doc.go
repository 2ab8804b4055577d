// Package glimmer is an entity-based 2D scene simulation and rendering
// runtime for [Ebitengine].
//
// A [Scene] is a plain-data ordered list of entities with shared settings:
// background color, camera, and physics configuration. The same core drives
// two hosts — the interactive editor (cmd/editor) and the standalone bundle
// player (cmd/player) — so what plays in the editor is exactly what ships.
//
// # Frame loop
//
// Hosts own the ebiten game loop and call into the core once per tick:
//
//	input.ReadKeyboard()
//	sim.Step(input, dt)          // physics, particles, animations, scripts
//	renderer.Draw(screen, scene, sim)
//
// [Sim.Step] runs only while playing. Physics advances on a capped
// fixed-timestep accumulator; particles, property animations, and entity
// scripts run once per frame, in that order, all synchronously on the frame
// goroutine.
//
// # Fault isolation
//
// Nothing inside the core aborts a frame. A script that throws is caught,
// logged to the [Logger] stream, and skipped for that frame only; an asset
// that fails to load leaves its entity undrawn; an animation with an
// unresolvable property path silently skips assignment. One entity's failure
// never touches another entity or the frame.
//
// # Scripting
//
// Entity scripts are Lua, executed by an embedded interpreter with a fixed
// whitelisted capability set (see [ScriptHost]). Scripts receive their whole
// world as explicit arguments each call — the entity, the input snapshot,
// dt, a host bridge, audio playback, and a prefab pool — and have no ambient
// host access in the editor context.
//
// [Ebitengine]: https://ebitengine.org
package glimmer
